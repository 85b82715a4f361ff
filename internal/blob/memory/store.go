// Package memory implements an in-memory blob Store for tests and local runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/greenleaf/internal/blob"
)

type entry struct {
	info blob.Info
	data []byte
}

type Store struct {
	mu   sync.RWMutex
	objs map[string]entry
}

func New() *Store { return &Store{objs: make(map[string]entry)} }

func (s *Store) Driver() blob.Driver { return blob.DriverMemory }

func (s *Store) Put(_ context.Context, key string, data []byte, opts blob.PutOptions) error {
	if strings.TrimSpace(key) == "" {
		return blob.ErrInvalidKey
	}
	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[key] = entry{
		info: blob.Info{
			Key:          key,
			Size:         int64(len(stored)),
			ContentType:  opts.ContentType,
			LastModified: time.Now().UTC(),
		},
		data: stored,
	}
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, blob.ErrNotFound
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objs, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) List(_ context.Context, prefix string) ([]blob.Info, error) {
	s.mu.RLock()
	infos := make([]blob.Info, 0, len(s.objs))
	for k, obj := range s.objs {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			infos = append(infos, obj.info)
		}
	}
	s.mu.RUnlock()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
