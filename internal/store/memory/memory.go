// Package memory is a process-local dataset store holding the latest upload only.
package memory

import (
	"context"
	"sync"

	"finviz/internal/core"
	"finviz/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	latest  *core.Dataset
	digests map[string]store.Digest
}

var (
	_ store.Store       = (*Store)(nil)
	_ store.DigestStore = (*Store)(nil)
)

func NewStore() *Store { return &Store{digests: map[string]store.Digest{}} }

// Save replaces the stored dataset. Records are copied so callers may reuse their slice.
func (s *Store) Save(_ context.Context, ds core.Dataset) error {
	cp := ds
	cp.Records = append([]core.Record(nil), ds.Records...)
	s.mu.Lock()
	s.latest = &cp
	for id := range s.digests {
		if id != cp.ID {
			delete(s.digests, id)
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Latest(_ context.Context) (core.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return core.Dataset{}, store.ErrNoDataset
	}
	return *s.latest, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil || s.latest.ID != id {
		return core.Dataset{}, store.ErrNotFound
	}
	return *s.latest, nil
}

// SaveDigest stores d if its dataset is still the current one.
func (s *Store) SaveDigest(_ context.Context, d store.Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil || s.latest.ID != d.DatasetID {
		return store.ErrNotFound
	}
	s.digests[d.DatasetID] = d
	return nil
}

func (s *Store) GetDigest(_ context.Context, datasetID string) (store.Digest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.digests[datasetID]
	if !ok {
		return store.Digest{}, store.ErrNotFound
	}
	return d, nil
}
