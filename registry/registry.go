// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package registry persists compositor options in a flat text file,
// one KEY=VALUE entry per line. Writes are coalesced by a background
// goroutine and flushed atomically (temp file + rename), trading a few
// seconds of durability for keeping disk I/O off the frame path.
package registry

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	hwc "github.com/intel/hwcompose"
)

// MaxEntryLen bounds len(key)+len(value) for one entry.
const MaxEntryLen = 512

// Writer timing. saveDelay coalesces bursts of writes into one flush;
// closeTimeout bounds how long Close waits for the writer to drain.
const (
	saveDelay    = 100 * time.Millisecond
	closeTimeout = 5 * time.Second
)

// Registry errors.
var (
	ErrClosed   = errors.New("registry: store is closed")
	ErrBadKey   = errors.New("registry: key must be non-empty and contain no '='")
	ErrBadValue = errors.New("registry: value must be non-empty")
	ErrTooLarge = fmt.Errorf("registry: len(key)+len(value) exceeds %d", MaxEntryLen)
)

// Store is a persisted key-value option store. Read and Write are safe
// for concurrent use from any goroutine.
type Store struct {
	path string

	mu      sync.Mutex
	entries map[string]string
	dirty   bool
	closed  bool

	// wake carries at most one pending dirty signal; only the latest
	// state matters, not how many writes produced it.
	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// Open loads the store backing file (a missing file is an empty store)
// and starts the background writer. Malformed lines are logged and
// skipped, never fatal.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]string),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	go s.writer()
	hwc.Logger().Info("registry opened",
		slog.String("path", path),
		slog.Int("entries", len(s.entries)))
	return s, nil
}

// load reads the backing file into memory.
func (s *Store) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("registry: open %s: %w", s.path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if text == "" {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok || key == "" || value == "" || len(key)+len(value) > MaxEntryLen {
			hwc.Logger().Warn("registry: skipping malformed line",
				slog.String("path", s.path),
				slog.Int("line", line))
			continue
		}
		s.entries[key] = value
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("registry: read %s: %w", s.path, err)
	}
	return nil
}

// Read returns the value stored under key.
func (s *Store) Read(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

// Write stores value under key and schedules a flush. The entry is
// durable within the coalescing window, not immediately; power loss
// inside the window loses the write.
func (s *Store) Write(key, value string) error {
	if key == "" || strings.Contains(key, "=") {
		return ErrBadKey
	}
	if value == "" {
		return ErrBadValue
	}
	if len(key)+len(value) > MaxEntryLen {
		return ErrTooLarge
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.entries[key] == value {
		s.mu.Unlock()
		return nil
	}
	s.entries[key] = value
	s.dirty = true
	s.mu.Unlock()
	s.nudge()
	return nil
}

// Delete removes key and schedules a flush. Deleting an absent key is a
// no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if _, ok := s.entries[key]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.entries, key)
	s.dirty = true
	s.mu.Unlock()
	s.nudge()
}

// nudge wakes the writer without blocking; a full channel already
// carries the signal.
func (s *Store) nudge() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// writer is the background persistence goroutine. It sleeps briefly
// after each wake so a burst of writes collapses into one flush.
func (s *Store) writer() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			s.flush()
			return
		case <-s.wake:
		}
		time.Sleep(saveDelay)
		// Collapse signals that arrived during the sleep.
		select {
		case <-s.wake:
		default:
		}
		s.flush()
	}
}

// flush writes the current entries atomically. On failure the store
// stays dirty so the next write-trigger retries; nothing beyond the
// in-memory window is lost.
func (s *Store) flush() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(s.entries[k])
		sb.WriteByte('\n')
	}
	s.dirty = false
	s.mu.Unlock()

	if err := writeAtomic(s.path, sb.String()); err != nil {
		hwc.Logger().Error("registry flush failed",
			slog.String("path", s.path),
			slog.Any("error", err))
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	}
}

// writeAtomic writes content to path via a temp file and rename.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".registry-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Close flushes pending writes and stops the writer. The wait is
// bounded; on timeout the failure is logged and Close returns anyway.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	select {
	case <-s.done:
	case <-time.After(closeTimeout):
		hwc.Logger().Error("registry close timed out awaiting writer",
			slog.String("path", s.path))
	}
	return nil
}
