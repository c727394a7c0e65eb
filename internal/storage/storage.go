// Package storage defines the key-value contract the calculator persists
// field values and settings through.
package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Settings keys shared by every calculator variant.
const (
	KeyUnits     = "user-medida"
	KeySpeedMode = "user-velocidad"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("storage: store closed")

// Entry is one key/value pair.
type Entry struct {
	Key   string
	Value string
}

// Store is a string key-value store. A missing key is not an error: Get
// reports ok=false and MultiGet omits it.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	MultiGet(ctx context.Context, keys []string) ([]Entry, error)
	MultiSet(ctx context.Context, entries []Entry) error
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = value
	return nil
}

func (m *Memory) MultiGet(_ context.Context, keys []string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out = append(out, Entry{Key: k, Value: v})
		}
	}
	return out, nil
}

func (m *Memory) MultiSet(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, e := range entries {
		m.data[e.Key] = e.Value
	}
	return nil
}

// Keys lists stored keys in order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// ToMap indexes entries by key.
func ToMap(entries []Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out
}
