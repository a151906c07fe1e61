package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	page    Page
	expires time.Time
}

// Memory is an in-process cache with per-entry expiry.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory returns an empty cache whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: make(map[string]memoryEntry), now: nowUTC}
}

var _ PageCache = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, key string) (Page, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return Page{}, false, nil
	}
	if !m.now().Before(entry.expires) {
		delete(m.entries, key)
		return Page{}, false, nil
	}
	page := entry.page
	page.Header = cloneHeader(page.Header)
	page.Body = append([]byte(nil), page.Body...)
	return page, true, nil
}

func (m *Memory) Set(_ context.Context, key string, page Page) error {
	page.Header = cloneHeader(page.Header)
	page.Body = append([]byte(nil), page.Body...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{page: page, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
