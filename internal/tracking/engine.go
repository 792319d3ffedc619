// Package tracking runs the chapter-discovery loop: it fans tracked
// pairs out over a bounded worker pool, asks the matching site adapter
// for chapters, and persists the ones not seen before. A failing pair
// never takes the run down with it.
package tracking

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"scantrack/internal/adapter"
	"scantrack/internal/browse"
	"scantrack/internal/normalize"
	"scantrack/pkg/models"
)

const (
	defaultWorkers     = 2
	defaultPairTimeout = 2 * time.Minute
)

// Engine coordinates one tracking run at a time. All fields except
// Registry, Store and Sessions are optional.
type Engine struct {
	Registry *adapter.Registry
	Store    Store
	Sessions browse.Factory

	// Workers bounds concurrent pair processing; each worker owns one
	// browsing session for its whole lifetime.
	Workers     int
	PairTimeout time.Duration

	Events EventSink
	Clock  func() time.Time
}

func NewEngine(reg *adapter.Registry, store Store, sessions browse.Factory) *Engine {
	return &Engine{
		Registry: reg,
		Store:    store,
		Sessions: sessions,
	}
}

func (e *Engine) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return defaultWorkers
}

func (e *Engine) pairTimeout() time.Duration {
	if e.PairTimeout > 0 {
		return e.PairTimeout
	}
	return defaultPairTimeout
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now().UTC()
}

func (e *Engine) publish(ev TrackingEvent) {
	if e.Events != nil {
		e.Events.Publish(ev)
	}
}

// RunTracking processes the given pairs and reports what happened.
// Pairs that are unverified or inactive are skipped up front. The
// returned result is always non-nil, even when ctx is cancelled
// mid-run; cancellation stops dispatching new pairs but lets in-flight
// ones finish, and pairs never dispatched are counted as skipped.
func (e *Engine) RunTracking(ctx context.Context, pairs []models.TrackedPair) *models.RunResult {
	result := &models.RunResult{StartedAt: e.now()}

	eligible := make([]models.TrackedPair, 0, len(pairs))
	for _, p := range pairs {
		if !p.Verified || !p.Active {
			result.PairsSkipped++
			continue
		}
		eligible = append(eligible, p)
	}

	log.Printf("[tracking] run started: %d pairs (%d skipped)", len(eligible), result.PairsSkipped)
	e.publish(TrackingEvent{
		Type:  EventRunStarted,
		Pairs: len(eligible),
		At:    result.StartedAt,
	})

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan models.TrackedPair)
	)

	record := func(out models.PairOutcome, discovered []models.PersistedChapter, errs []models.RunError) {
		mu.Lock()
		defer mu.Unlock()
		result.Outcomes = append(result.Outcomes, out)
		result.NewChapters += out.NewChapters
		result.Discovered = append(result.Discovered, discovered...)
		result.Errors = append(result.Errors, errs...)
	}

	for i := 0; i < e.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			session, err := e.Sessions()
			if err != nil {
				// Still drain jobs so the dispatcher does not deadlock;
				// every pair this worker picks up fails the same way.
				for pair := range jobs {
					record(
						models.PairOutcome{PairID: pair.ID, ItemID: pair.ItemID, Adapter: pair.Adapter, Failed: true},
						nil,
						[]models.RunError{pairError(pair, models.ErrKindFetch, "open session: "+err.Error())},
					)
					e.publish(TrackingEvent{
						Type: EventPairDone, PairID: pair.ID, ItemID: pair.ItemID,
						Adapter: pair.Adapter, Failed: true, At: e.now(),
					})
				}
				return
			}
			defer session.Close()

			for pair := range jobs {
				out, discovered, errs := e.processPair(ctx, session, pair)
				record(out, discovered, errs)
				e.publish(TrackingEvent{
					Type:        EventPairDone,
					PairID:      out.PairID,
					ItemID:      out.ItemID,
					Adapter:     out.Adapter,
					NewChapters: out.NewChapters,
					Failed:      out.Failed,
					At:          e.now(),
				})
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, pair := range eligible {
		select {
		case jobs <- pair:
			dispatched++
		case <-ctx.Done():
			log.Printf("[tracking] run cancelled: %v", ctx.Err())
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	// Only pairs actually handed to a worker count as attempted; the
	// rest of a cancelled run is skipped.
	result.PairsAttempted = dispatched
	result.PairsSkipped += len(eligible) - dispatched

	result.FinishedAt = e.now()
	log.Printf("[tracking] run finished: %d new chapters, %d errors", result.NewChapters, len(result.Errors))

	e.publish(TrackingEvent{
		Type:        EventRunFinished,
		NewChapters: result.NewChapters,
		At:          result.FinishedAt,
	})
	return result
}

func (e *Engine) processPair(ctx context.Context, session browse.Session, pair models.TrackedPair) (models.PairOutcome, []models.PersistedChapter, []models.RunError) {
	out := models.PairOutcome{PairID: pair.ID, ItemID: pair.ItemID, Adapter: pair.Adapter}

	site, err := e.Registry.Resolve(pair.Adapter, session)
	if err != nil {
		out.Failed = true
		kind := models.ErrKindFetch
		if errors.Is(err, adapter.ErrUnknownAdapter) {
			kind = models.ErrKindUnknownAdapter
		}
		return out, nil, []models.RunError{pairError(pair, kind, err.Error())}
	}

	pairCtx, cancel := context.WithTimeout(ctx, e.pairTimeout())
	defer cancel()

	entries, err := site.ListChapters(pairCtx, pair.SourceURL)
	if err != nil {
		out.Failed = true
		log.Printf("[tracking] pair %d (%s/%s): fetch failed: %v", pair.ID, pair.ItemID, pair.Adapter, err)
		return out, nil, []models.RunError{pairError(pair, models.ErrKindFetch, err.Error())}
	}

	now := e.now()
	var (
		discovered []models.PersistedChapter
		errs       []models.RunError
	)

	for _, entry := range entries {
		key := normalize.ChapterKey(entry.Label)

		exists, err := e.Store.ChapterExists(pairCtx, pair.ID, key)
		if err != nil {
			out.Failed = true
			errs = append(errs, pairError(pair, models.ErrKindStore, err.Error()))
			break
		}
		if exists {
			continue
		}

		ch := models.CanonicalChapter{
			Key:        key,
			Title:      entry.Title,
			URL:        entry.URL,
			DetectedAt: now,
		}
		if published, ok := normalize.DateOK(entry.DateText, now); ok {
			ch.Published = &published
		}

		id, err := e.Store.InsertChapter(pairCtx, pair.ID, ch)
		if err != nil {
			if errors.Is(err, ErrDuplicateKey) {
				continue
			}
			out.Failed = true
			errs = append(errs, pairError(pair, models.ErrKindStore, err.Error()))
			break
		}

		out.NewChapters++
		discovered = append(discovered, models.PersistedChapter{
			ID:         id,
			PairID:     pair.ID,
			ItemID:     pair.ItemID,
			Adapter:    pair.Adapter,
			Key:        ch.Key,
			Title:      ch.Title,
			URL:        ch.URL,
			Published:  ch.Published,
			DetectedAt: ch.DetectedAt,
		})
		e.publish(TrackingEvent{
			Type:       EventChapterNew,
			PairID:     pair.ID,
			ItemID:     pair.ItemID,
			Adapter:    pair.Adapter,
			ChapterKey: ch.Key,
			ChapterURL: ch.URL,
			At:         now,
		})
	}

	if out.NewChapters > 0 {
		log.Printf("[tracking] pair %d (%s/%s): %d new chapters", pair.ID, pair.ItemID, pair.Adapter, out.NewChapters)
	}
	return out, discovered, errs
}

func pairError(pair models.TrackedPair, kind, msg string) models.RunError {
	return models.RunError{
		PairID:  pair.ID,
		ItemID:  pair.ItemID,
		Adapter: pair.Adapter,
		Kind:    kind,
		Message: msg,
	}
}
