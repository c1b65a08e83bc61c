// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/pressroom/lib/broadcast"
	"github.com/bureau-foundation/pressroom/lib/clock"
	"github.com/bureau-foundation/pressroom/lib/presence"
	"github.com/bureau-foundation/pressroom/lib/ref"
)

// monitor watches one owner's activity and surrenders the lock after
// sustained inactivity. It only ever untracks and broadcasts — the
// owner's own state demotion happens when its event loop sees the
// resulting EditorLeft, keeping all state changes on one goroutine.
type monitor struct {
	clock       clock.Clock
	registry    presence.Registry
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger

	key        ref.SessionKey
	connection ref.ConnectionID
	user       presence.User

	warnAfter   time.Duration
	expireAfter time.Duration
	poll        time.Duration

	activity *atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

func (m *monitor) halt() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *monitor) run() {
	ticker := m.clock.NewTicker(m.poll)
	defer ticker.Stop()

	warned := false
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			// The tick is only a wakeup. Ticks can be dropped under
			// load, so idle time comes from the clock, not the tick.
			now := m.clock.Now()
			idle := now.Sub(time.Unix(0, m.activity.Load()))

			if idle < m.warnAfter {
				warned = false
				continue
			}

			if idle >= m.expireAfter {
				if err := m.registry.Untrack(m.key, m.connection); err != nil {
					m.logger.Error("lock expiry untrack failed",
						"session", m.key.String(),
						"connection", m.connection.String(),
						"error", err,
					)
				}
				m.broadcaster.OwnerLeft(m.key, m.connection, m.user, true)
				m.logger.Info("edit lock expired",
					"session", m.key.String(),
					"connection", m.connection.String(),
					"idle", idle.Round(time.Second),
				)
				return
			}

			if !warned {
				m.broadcaster.Warn(broadcast.LockWarning{
					Session:  m.key,
					Deadline: now.Add(m.expireAfter - idle),
				})
				warned = true
			}
		}
	}
}
