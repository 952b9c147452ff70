// Package kv holds the session.Backend implementations that live outside the database.
package kv

import (
	"context"
	"sync"
	"time"

	"github.com/ifcet/aula/core/session"
)

// NowFunc returns the current time.
var NowFunc = time.Now // mockable

type (
	entry struct {
		value   string
		expires time.Time // zero: never
	}

	// Memory keeps session values in process. Values expire `ttl` after their last write.
	Memory struct {
		mutex  sync.RWMutex
		ttl    time.Duration
		spaces map[string]map[string]entry
	}

	memoryStore struct {
		mem       *Memory
		namespace string
	}
)

var (
	_ session.Backend = (*Memory)(nil)
	_ session.Store   = (*memoryStore)(nil)
)

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, spaces: make(map[string]map[string]entry)}
}

func (m *Memory) Scope(namespace string) session.Store {
	return &memoryStore{mem: m, namespace: namespace}
}

// Purge drops every expired value.
func (m *Memory) Purge() {
	now := NowFunc()
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for ns, space := range m.spaces {
		for key, e := range space {
			if e.expired(now) {
				delete(space, key)
			}
		}
		if len(space) == 0 {
			delete(m.spaces, ns)
		}
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mem.mutex.RLock()
	defer s.mem.mutex.RUnlock()

	e, ok := s.mem.spaces[s.namespace][key]
	if !ok || e.expired(NowFunc()) {
		return "", session.ErrNotFound
	}
	return e.value, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mem.mutex.Lock()
	defer s.mem.mutex.Unlock()

	space, ok := s.mem.spaces[s.namespace]
	if !ok {
		space = make(map[string]entry)
		s.mem.spaces[s.namespace] = space
	}
	e := entry{value: value}
	if s.mem.ttl > 0 {
		e.expires = NowFunc().Add(s.mem.ttl)
	}
	space[key] = e
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.mem.mutex.Lock()
	defer s.mem.mutex.Unlock()

	if space, ok := s.mem.spaces[s.namespace]; ok {
		delete(space, key)
	}
	return nil
}
