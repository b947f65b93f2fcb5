// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"sync"

	"github.com/padron-digital/testigo/testigo"
)

type sessionKey struct {
	mesaID     string
	operatorID string
}

type session struct {
	mu      sync.Mutex
	ctl     *testigo.Controller
	resumed bool
}

// SessionRegistry hands out one controller per (mesa, operator) pair and
// serializes operations on it. This is the server-side version of the UI
// rule that disables the start/finalize/cancel buttons while an operation
// is in flight: re-entrant calls queue instead of racing the single
// active-sample invariant.
//
// Entries are never evicted. Each one is a controller plus a mutex, and
// the map is bounded by mesas x operators, so on an election-day padrón
// that is at most a few thousand entries for the life of the process.
// Evicting on idle would need refcounting so a queued caller is not
// split onto a fresh session.
type SessionRegistry struct {
	mu       sync.Mutex
	store    testigo.SampleStore
	votes    testigo.VoteCountSource
	sessions map[sessionKey]*session
}

func NewSessionRegistry(store testigo.SampleStore, votes testigo.VoteCountSource) *SessionRegistry {
	return &SessionRegistry{
		store:    store,
		votes:    votes,
		sessions: make(map[sessionKey]*session),
	}
}

// With runs fn against the pair's controller under the session lock. The
// first use of a session resumes any sample left open by a previous
// server run.
func (rg *SessionRegistry) With(ctx context.Context, mesaID, operatorID string, fn func(*testigo.Controller) error) error {
	rg.mu.Lock()
	key := sessionKey{mesaID: mesaID, operatorID: operatorID}
	sess, ok := rg.sessions[key]
	if !ok {
		sess = &session{ctl: testigo.NewController(mesaID, operatorID, rg.store, rg.votes)}
		rg.sessions[key] = sess
	}
	rg.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.resumed {
		if err := sess.ctl.Resume(ctx); err != nil {
			return err
		}
		sess.resumed = true
	}

	return fn(sess.ctl)
}
