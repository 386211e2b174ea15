// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package database

import (
	"sync"

	apperr "sqlferry/cli/internal/errors"

	"github.com/google/uuid"
)

// Guard admits one long-running operation per database at a time.
type Guard struct {
	mu     sync.Mutex
	active map[uuid.UUID]string
}

// InFlight is the process-wide guard used when callers don't supply one.
var InFlight = &Guard{}

// Acquire marks id busy for op. The returned release must be called when the
// operation ends; a second Acquire for the same id fails until then.
func (g *Guard) Acquire(id uuid.UUID, op string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		g.active = make(map[uuid.UUID]string)
	}
	if running, ok := g.active[id]; ok {
		return nil, apperr.User("Database %s: operation already in progress (%s)", id, running)
	}
	g.active[id] = op
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, id)
			g.mu.Unlock()
		})
	}, nil
}
