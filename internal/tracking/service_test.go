package tracking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scantrack/pkg/models"
)

func waitForJob(t *testing.T, s *Service, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := s.GetJob(id)
		require.True(t, ok)
		if job.Status == JobCompleted || job.Status == JobFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return Job{}
}

func TestServiceTriggerRunsToCompletion(t *testing.T) {
	store := newMemStore()
	store.pairs = []models.TrackedPair{
		pair(1, "solo-max", "stub", "u"),
	}
	stub := &stubAdapter{
		name: "stub",
		pages: map[string][]models.RawChapter{
			"u": {
				{Label: "Chapter 1", URL: "u1", DateText: "2 days ago"},
				{Label: "Chapter 2", URL: "u2", DateText: "1 day ago"},
			},
		},
	}
	e, _ := testEngine(t, store, stub)
	svc := NewService(e, store)

	job := svc.Trigger(PairFilter{})
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobPending, job.Status)

	done := waitForJob(t, svc, job.ID)
	assert.Equal(t, JobCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, 2, done.Result.NewChapters)
	require.NotNil(t, done.StartedAt)
	require.NotNil(t, done.FinishedAt)
}

func TestServiceTriggerHonorsFilter(t *testing.T) {
	store := newMemStore()
	store.pairs = []models.TrackedPair{
		pair(1, "solo-max", "stub", "u"),
		pair(2, "iron-crown", "stub", "v"),
	}
	stub := &stubAdapter{
		name: "stub",
		pages: map[string][]models.RawChapter{
			"u": {{Label: "Chapter 1", URL: "u1"}},
			"v": {{Label: "Chapter 1", URL: "v1"}},
		},
	}
	e, _ := testEngine(t, store, stub)
	svc := NewService(e, store)

	job := svc.Trigger(PairFilter{ItemID: "solo-max"})
	done := waitForJob(t, svc, job.ID)

	require.NotNil(t, done.Result)
	assert.Equal(t, 1, done.Result.PairsAttempted)
	assert.Equal(t, 1, done.Result.NewChapters)
}

func TestServiceJobFailsWhenPairsUnavailable(t *testing.T) {
	store := newMemStore()
	store.pairsErr = errors.New("db gone")
	e, _ := testEngine(t, store)
	svc := NewService(e, store)

	job := svc.Trigger(PairFilter{})
	done := waitForJob(t, svc, job.ID)

	assert.Equal(t, JobFailed, done.Status)
	assert.Contains(t, done.Error, "db gone")
	assert.Nil(t, done.Result)
}

func TestServiceListJobsNewestFirst(t *testing.T) {
	store := newMemStore()
	e, _ := testEngine(t, store)
	svc := NewService(e, store)

	first := svc.Trigger(PairFilter{})
	second := svc.Trigger(PairFilter{})

	waitForJob(t, svc, first.ID)
	waitForJob(t, svc, second.ID)

	jobs := svc.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID)
	assert.Equal(t, first.ID, jobs[1].ID)

	_, ok := svc.GetJob("nope")
	assert.False(t, ok)
}
