package tracking

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"scantrack/pkg/models"
)

// Job statuses.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Job is one triggered tracking run and its lifecycle.
type Job struct {
	ID         string            `json:"id"`
	Status     string            `json:"status"`
	Filter     PairFilter        `json:"filter"`
	CreatedAt  time.Time         `json:"created_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Result     *models.RunResult `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Service triggers tracking runs asynchronously and remembers their
// outcomes for later inspection. Runs execute one at a time; triggers
// that arrive while a run is active queue behind it.
type Service struct {
	Engine *Engine
	Store  Store

	mu    sync.Mutex
	jobs  map[string]*Job
	order []string // insertion order, oldest first

	runMu sync.Mutex
}

func NewService(engine *Engine, store Store) *Service {
	return &Service{
		Engine: engine,
		Store:  store,
		jobs:   make(map[string]*Job),
	}
}

// Trigger registers a new job and starts it in the background. The
// returned snapshot reflects the job at creation time.
func (s *Service) Trigger(filter PairFilter) Job {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    JobPending,
		Filter:    filter,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.mu.Unlock()

	go s.run(job.ID)

	return *job
}

func (s *Service) run(id string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	now := time.Now().UTC()
	s.update(id, func(j *Job) {
		j.Status = JobRunning
		j.StartedAt = &now
	})

	var filter PairFilter
	s.mu.Lock()
	if j, ok := s.jobs[id]; ok {
		filter = j.Filter
	}
	s.mu.Unlock()

	ctx := context.Background()
	pairs, err := s.Store.FindTrackedPairs(ctx, filter)
	if err != nil {
		log.Printf("[tracking] job %s: load pairs failed: %v", id, err)
		done := time.Now().UTC()
		s.update(id, func(j *Job) {
			j.Status = JobFailed
			j.Error = err.Error()
			j.FinishedAt = &done
		})
		return
	}

	result := s.Engine.RunTracking(ctx, pairs)

	done := time.Now().UTC()
	s.update(id, func(j *Job) {
		j.Status = JobCompleted
		j.Result = result
		j.FinishedAt = &done
	})
}

func (s *Service) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		fn(j)
	}
}

// GetJob returns a snapshot of one job.
func (s *Service) GetJob(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// ListJobs returns snapshots of all jobs, newest first.
func (s *Service) ListJobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.jobs[s.order[i]])
	}
	return out
}
