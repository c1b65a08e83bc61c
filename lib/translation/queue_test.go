// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package translation_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/pressroom/lib/broadcast"
	"github.com/bureau-foundation/pressroom/lib/config"
	"github.com/bureau-foundation/pressroom/lib/docstore"
	"github.com/bureau-foundation/pressroom/lib/document"
	"github.com/bureau-foundation/pressroom/lib/presence"
	"github.com/bureau-foundation/pressroom/lib/pubsub"
	"github.com/bureau-foundation/pressroom/lib/ref"
	"github.com/bureau-foundation/pressroom/lib/testutil"
	"github.com/bureau-foundation/pressroom/lib/translation"
)

const waitTimeout = 5 * time.Second

// fakeTranslator returns canned output, or an error when told to
// fail. done receives one value per Translate call.
type fakeTranslator struct {
	fail bool
	done chan struct{}
}

func (f *fakeTranslator) Translate(_ context.Context, source *document.Document, target ref.Language) (translation.Result, error) {
	defer func() {
		if f.done != nil {
			f.done <- struct{}{}
		}
	}()
	if f.fail {
		return translation.Result{}, errors.New("backend unavailable")
	}
	return translation.Result{
		Title: "[" + target.String() + "] " + source.Title,
		Body:  "translated: " + source.Body,
	}, nil
}

type fixture struct {
	store       *docstore.Store
	queue       *translation.Queue
	broadcaster *broadcast.Broadcaster
	translator  *fakeTranslator
	group       ref.Group
	id          ref.DocumentID
	english     ref.Language
	german      ref.Language
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := docstore.Open(docstore.Config{
		Path: filepath.Join(t.TempDir(), "documents.db"),
	})
	if err != nil {
		t.Fatalf("docstore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	broadcaster, err := broadcast.New(broadcast.Config{
		Bus:      pubsub.NewBus(pubsub.Config{}),
		Registry: presence.NewMemoryRegistry(),
	})
	if err != nil {
		t.Fatalf("broadcast.New: %v", err)
	}

	translator := &fakeTranslator{done: make(chan struct{}, 8)}
	queue, err := translation.NewQueue(translation.Config{
		Store:       store,
		Translator:  translator,
		Broadcaster: broadcaster,
	})
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	group, err := ref.ParseGroup("blog")
	if err != nil {
		t.Fatalf("ParseGroup: %v", err)
	}
	id, err := ref.ParseDocumentID("release-notes")
	if err != nil {
		t.Fatalf("ParseDocumentID: %v", err)
	}
	english, err := ref.ParseLanguage("en")
	if err != nil {
		t.Fatalf("ParseLanguage: %v", err)
	}
	german, err := ref.ParseLanguage("de")
	if err != nil {
		t.Fatalf("ParseLanguage: %v", err)
	}

	source := &document.Document{
		Group:           group,
		ID:              id,
		Language:        english,
		Version:         1,
		PrimaryLanguage: english,
		Title:           "Release Notes",
		Status:          document.StatusDraft,
		DirectorySlug:   "release-notes",
		URLSlug:         "notes",
		Body:            "English body.",
	}
	if err := store.Write(context.Background(), source); err != nil {
		t.Fatalf("Write source: %v", err)
	}

	return &fixture{
		store:       store,
		queue:       queue,
		broadcaster: broadcaster,
		translator:  translator,
		group:       group,
		id:          id,
		english:     english,
		german:      german,
	}
}

func (f *fixture) job() translation.Job {
	return translation.Job{Group: f.group, ID: f.id, Source: f.english, Target: f.german}
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.queue.Run(ctx)
}

func (f *fixture) waitForStatus(t *testing.T, want translation.Status) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if status, ok := f.queue.Status(f.group, f.id, f.german); ok && status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	status, _ := f.queue.Status(f.group, f.id, f.german)
	t.Fatalf("job status = %s, want %s", status, want)
}

func TestTranslationJobCreatesLanguage(t *testing.T) {
	f := newFixture(t)
	subscription := f.broadcaster.SubscribeDocument(f.group, f.id)
	defer subscription.Cancel()
	f.run(t)

	receipt, err := f.queue.Enqueue(context.Background(), f.job())
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if receipt.Conflict {
		t.Fatal("fresh job reported as conflict")
	}

	f.waitForStatus(t, translation.StatusDone)

	got, err := f.store.Read(context.Background(), f.group, f.id, f.german, 0)
	if err != nil {
		t.Fatalf("Read translation: %v", err)
	}
	if got.Body != "translated: English body." {
		t.Errorf("Body = %q", got.Body)
	}
	if got.Title != "[de] Release Notes" {
		t.Errorf("Title = %q", got.Title)
	}
	// The primary is a draft, so the translation mirrors it.
	if got.Status != document.StatusDraft {
		t.Errorf("Status = %v, want draft", got.Status)
	}
	// URL slugs are unique per group; the source keeps its claim.
	if got.URLSlug != "" {
		t.Errorf("URLSlug = %q, want empty", got.URLSlug)
	}

	event := testutil.RequireReceive(t, subscription.C, waitTimeout, "translation created event")
	created, ok := event.(broadcast.TranslationCreated)
	if !ok {
		t.Fatalf("received %T, want TranslationCreated", event)
	}
	if created.Language != f.german {
		t.Errorf("event language = %s, want de", created.Language)
	}
}

func TestDuplicateEnqueueConflicts(t *testing.T) {
	f := newFixture(t)
	// No worker running: the first job stays pending.

	receipt, err := f.queue.Enqueue(context.Background(), f.job())
	if err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	if receipt.Conflict {
		t.Fatal("first job reported as conflict")
	}

	receipt, err = f.queue.Enqueue(context.Background(), f.job())
	if err != nil {
		t.Fatalf("second Enqueue: %v", err)
	}
	if !receipt.Conflict {
		t.Error("duplicate job not reported as conflict")
	}
}

func TestFailedJobAllowsRetry(t *testing.T) {
	f := newFixture(t)
	f.translator.fail = true
	f.run(t)

	if _, err := f.queue.Enqueue(context.Background(), f.job()); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	f.waitForStatus(t, translation.StatusFailed)

	f.translator.fail = false
	receipt, err := f.queue.Enqueue(context.Background(), f.job())
	if err != nil {
		t.Fatalf("retry Enqueue: %v", err)
	}
	if receipt.Conflict {
		t.Error("retry after failure reported as conflict")
	}
	f.waitForStatus(t, translation.StatusDone)
}

func TestManualSaveWinsRace(t *testing.T) {
	f := newFixture(t)

	// Simulate the editor creating German by hand before the worker
	// gets to the job.
	manual := &document.Document{
		Group:           f.group,
		ID:              f.id,
		Language:        f.german,
		Version:         1,
		PrimaryLanguage: f.english,
		Title:           "Handgemacht",
		Status:          document.StatusDraft,
		DirectorySlug:   "release-notes",
		Body:            "Manuell übersetzt.",
	}
	if err := f.store.Create(context.Background(), manual); err != nil {
		t.Fatalf("manual Create: %v", err)
	}

	f.run(t)
	if _, err := f.queue.Enqueue(context.Background(), f.job()); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	f.waitForStatus(t, translation.StatusDone)

	got, err := f.store.Read(context.Background(), f.group, f.id, f.german, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Body != "Manuell übersetzt." {
		t.Errorf("manual translation overwritten: Body = %q", got.Body)
	}
}

func TestQueueFromFileHonorsSize(t *testing.T) {
	f := newFixture(t)

	cfg := config.Default()
	cfg.Translation.QueueSize = 1

	queue, err := translation.NewQueueFromFile(cfg, f.store, f.translator, f.broadcaster, nil)
	if err != nil {
		t.Fatalf("NewQueueFromFile: %v", err)
	}

	// No worker running: the single pending slot fills, the next
	// distinct job bounces.
	if _, err := queue.Enqueue(context.Background(), f.job()); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	french, err := ref.ParseLanguage("fr")
	if err != nil {
		t.Fatalf("ParseLanguage: %v", err)
	}
	second := f.job()
	second.Target = french
	if _, err := queue.Enqueue(context.Background(), second); !errors.Is(err, translation.ErrQueueFull) {
		t.Fatalf("second Enqueue error = %v, want ErrQueueFull", err)
	}
}

func TestEnqueueValidation(t *testing.T) {
	f := newFixture(t)

	job := f.job()
	job.Target = f.english
	if _, err := f.queue.Enqueue(context.Background(), job); err == nil {
		t.Error("expected error for source == target")
	}

	if _, err := f.queue.Enqueue(context.Background(), translation.Job{}); err == nil {
		t.Error("expected error for empty job")
	}
}
