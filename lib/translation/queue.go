// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package translation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/pressroom/lib/broadcast"
	"github.com/bureau-foundation/pressroom/lib/config"
	"github.com/bureau-foundation/pressroom/lib/docstore"
	"github.com/bureau-foundation/pressroom/lib/document"
	"github.com/bureau-foundation/pressroom/lib/ref"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// defaultQueueSize bounds the pending-job channel.
const defaultQueueSize = 64

// ErrQueueFull is returned by Enqueue when the pending channel is at
// capacity. Distinct from a conflict: the job is valid, the system is
// just saturated.
var ErrQueueFull = errors.New("translation: queue full")

// Job is a request to translate one document into a target language.
type Job struct {
	Group  ref.Group
	ID     ref.DocumentID
	Source ref.Language
	Target ref.Language
}

func (j Job) key() string {
	return j.Group.String() + "/" + j.ID.String() + "/" + j.Target.String()
}

// Receipt is Enqueue's answer. Conflict means an equivalent job is
// already pending or running and no new job was created.
type Receipt struct {
	Conflict bool
}

// Result is a translator's output for one document.
type Result struct {
	Title string
	Body  string
}

// Translator produces the target-language content. Implementations
// must be safe for concurrent use if the queue runs multiple workers.
type Translator interface {
	Translate(ctx context.Context, source *document.Document, target ref.Language) (Result, error)
}

// Config holds the parameters for creating a Queue.
type Config struct {
	// Store persists completed translations. Required.
	Store *docstore.Store

	// Translator produces the content. Required.
	Translator Translator

	// Broadcaster announces completed translations on the document
	// topic. Optional; nil skips announcements.
	Broadcaster *broadcast.Broadcaster

	// QueueSize bounds pending jobs. Zero selects the default.
	QueueSize int

	// Logger receives job lifecycle messages. Nil discards them.
	Logger *slog.Logger
}

// Queue deduplicates, tracks, and executes translation jobs. Safe
// for concurrent use.
type Queue struct {
	store       *docstore.Store
	translator  Translator
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger

	pending chan Job

	mu       sync.Mutex
	statuses map[string]Status
}

// NewQueue creates a Queue. Call Run to start processing.
func NewQueue(cfg Config) (*Queue, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("translation: Store is required")
	}
	if cfg.Translator == nil {
		return nil, fmt.Errorf("translation: Translator is required")
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Queue{
		store:       cfg.Store,
		translator:  cfg.Translator,
		broadcaster: cfg.Broadcaster,
		logger:      logger,
		pending:     make(chan Job, queueSize),
		statuses:    make(map[string]Status),
	}, nil
}

// NewQueueFromFile builds a Queue sized by the translation section of
// a loaded configuration file.
func NewQueueFromFile(cfg *config.Config, store *docstore.Store, translator Translator, broadcaster *broadcast.Broadcaster, logger *slog.Logger) (*Queue, error) {
	return NewQueue(Config{
		Store:       store,
		Translator:  translator,
		Broadcaster: broadcaster,
		QueueSize:   cfg.Translation.QueueSize,
		Logger:      logger,
	})
}

// Enqueue submits a job. An equivalent pending or running job yields
// Receipt{Conflict: true} and no new work; done and failed jobs do
// not block resubmission.
func (q *Queue) Enqueue(ctx context.Context, job Job) (Receipt, error) {
	if job.Group.IsZero() || job.ID.IsZero() || job.Source.IsZero() || job.Target.IsZero() {
		return Receipt{}, fmt.Errorf("translation: incomplete job %+v", job)
	}
	if job.Source == job.Target {
		return Receipt{}, fmt.Errorf("translation: source and target are both %s", job.Target)
	}

	q.mu.Lock()
	switch q.statuses[job.key()] {
	case StatusPending, StatusRunning:
		q.mu.Unlock()
		return Receipt{Conflict: true}, nil
	}
	q.statuses[job.key()] = StatusPending
	q.mu.Unlock()

	select {
	case q.pending <- job:
	default:
		q.mu.Lock()
		delete(q.statuses, job.key())
		q.mu.Unlock()
		return Receipt{}, ErrQueueFull
	}

	q.logger.Info("translation job queued",
		"group", job.Group.String(),
		"document", job.ID.String(),
		"target", job.Target.String(),
	)
	return Receipt{}, nil
}

// Status reports a job's current state. The second return is false
// when no job for the key has been seen.
func (q *Queue) Status(group ref.Group, id ref.DocumentID, target ref.Language) (Status, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	status, ok := q.statuses[Job{Group: group, ID: id, Target: target}.key()]
	return status, ok
}

// Run processes jobs until ctx is cancelled. It is the worker loop —
// callers run it in a goroutine (or several, for concurrent
// translation backends).
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.pending:
			q.setStatus(job, StatusRunning)
			if err := q.execute(ctx, job); err != nil {
				q.setStatus(job, StatusFailed)
				q.logger.Error("translation job failed",
					"group", job.Group.String(),
					"document", job.ID.String(),
					"target", job.Target.String(),
					"error", err,
				)
				continue
			}
			q.setStatus(job, StatusDone)
		}
	}
}

func (q *Queue) setStatus(job Job, status Status) {
	q.mu.Lock()
	q.statuses[job.key()] = status
	q.mu.Unlock()
}

// execute runs one job end to end.
func (q *Queue) execute(ctx context.Context, job Job) error {
	source, err := q.store.Read(ctx, job.Group, job.ID, job.Source, 0)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	result, err := q.translator.Translate(ctx, source, job.Target)
	if err != nil {
		return fmt.Errorf("translating to %s: %w", job.Target, err)
	}

	translated := buildTranslation(source, job.Target, result)
	if err := q.store.Create(ctx, translated); err != nil {
		if errors.Is(err, docstore.ErrExists) {
			// An editor created the language by hand while the job
			// ran. Their content wins; the job is complete.
			q.logger.Info("translation superseded by manual save",
				"group", job.Group.String(),
				"document", job.ID.String(),
				"target", job.Target.String(),
			)
			return nil
		}
		return fmt.Errorf("storing translation: %w", err)
	}

	q.logger.Info("translation created",
		"group", job.Group.String(),
		"document", job.ID.String(),
		"target", job.Target.String(),
	)
	if q.broadcaster != nil {
		q.broadcaster.DocumentEvent(job.Group, job.ID, broadcast.TranslationCreated{
			Group:    job.Group,
			ID:       job.ID,
			Language: job.Target,
		})
	}
	return nil
}

// buildTranslation derives the stored translation from the source
// cell. The status mirrors a non-published primary; the URL slug is
// cleared because slugs are unique per group and the source keeps
// its claim.
func buildTranslation(source *document.Document, target ref.Language, result Result) *document.Document {
	translated := *source
	translated.Language = target
	translated.Title = result.Title
	translated.Body = result.Body
	translated.Status = document.EffectiveStatus(document.StatusDraft, false, source.PrimaryStatus())
	translated.PublishedAt = time.Time{}
	translated.URLSlug = ""
	translated.CreatedAt = time.Time{}
	if !source.Version.IsZero() {
		translated.Version = 1
	}
	return &translated
}
