// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/pressroom/lib/broadcast"
	"github.com/bureau-foundation/pressroom/lib/clock"
	"github.com/bureau-foundation/pressroom/lib/config"
	"github.com/bureau-foundation/pressroom/lib/docstore"
	"github.com/bureau-foundation/pressroom/lib/presence"
	"github.com/bureau-foundation/pressroom/lib/rendercache"
	"github.com/bureau-foundation/pressroom/lib/slug"
)

// Deps carries the process-level dependencies a configuration file
// cannot describe: the presence registry, an open document store, and
// the broadcaster that spans them.
type Deps struct {
	Registry    presence.Registry
	Store       *docstore.Store
	Broadcaster *broadcast.Broadcaster
	Clock       clock.Clock
	Logger      *slog.Logger
}

// NewManagerFromFile assembles a Manager from a loaded configuration
// file: slug rules from the slugs section, cache size from the render
// section, lock tuning and fail-open policy from the collaboration
// section.
func NewManagerFromFile(cfg *config.Config, deps Deps) (*Manager, error) {
	lockTimeout, err := cfg.Collaboration.LockTimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("session: collaboration.lock_timeout: %w", err)
	}
	warnAfter, err := cfg.Collaboration.WarnAfterDuration()
	if err != nil {
		return nil, fmt.Errorf("session: collaboration.warn_after: %w", err)
	}
	pollInterval, err := cfg.Collaboration.PollIntervalDuration()
	if err != nil {
		return nil, fmt.Errorf("session: collaboration.poll_interval: %w", err)
	}
	slugs, err := slug.NewValidator(slug.Config{
		Lookup:             deps.Store,
		RouteWords:         cfg.Slugs.RouteWords,
		ExtraLanguageCodes: cfg.Slugs.ExtraLanguageCodes,
	})
	if err != nil {
		return nil, fmt.Errorf("session: slug validator: %w", err)
	}
	return NewManager(Config{
		Registry:        deps.Registry,
		Store:           deps.Store,
		Slugs:           slugs,
		Broadcaster:     deps.Broadcaster,
		Cache:           rendercache.New(rendercache.Config{MaxEntries: cfg.Render.MaxCacheEntries}),
		Clock:           deps.Clock,
		Logger:          deps.Logger,
		LockTimeout:     lockTimeout,
		WarnAfter:       warnAfter,
		PollInterval:    pollInterval,
		DisableFailOpen: !cfg.Collaboration.FailOpenEnabled(),
	})
}
