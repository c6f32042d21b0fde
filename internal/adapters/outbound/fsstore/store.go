// Package fsstore implements the manifest store over a registry of
// serviceId -> manifest path entries.
package fsstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/skillcoder/reconfigurer/internal/logic/reconfig"
)

// Entry registers one service with the store.
type Entry struct {
	Name      string
	Path      string
	Container string // defaults to Name when empty
}

type store struct {
	logger  *slog.Logger
	entries []Entry
	byName  map[string]Entry
}

// New creates a manifest store over the given registry. Declaration order is
// preserved for all-services runs.
func New(logger *slog.Logger, entries []Entry) reconfig.ManifestStore {
	byName := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	return &store{
		logger:  logger,
		entries: entries,
		byName:  byName,
	}
}

var _ reconfig.ManifestStore = (*store)(nil)

func (s *store) Services() []reconfig.ServiceRef {
	refs := make([]reconfig.ServiceRef, 0, len(s.entries))

	for _, e := range s.entries {
		container := e.Container
		if container == "" {
			container = e.Name
		}

		refs = append(refs, reconfig.ServiceRef{Name: e.Name, Container: container})
	}

	return refs
}

func (s *store) Load(ctx context.Context, service string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	entry, ok := s.byName[service]
	if !ok {
		return nil, fmt.Errorf("load manifest: %w", &ManifestNotFoundError{Service: service})
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("load manifest: %w", &ManifestNotFoundError{Service: service})
		}

		return nil, fmt.Errorf("load manifest %s: %w", entry.Path, err)
	}

	return data, nil
}

func (s *store) Save(ctx context.Context, service string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}

	entry, ok := s.byName[service]
	if !ok {
		return fmt.Errorf("save manifest: %w", &ManifestNotFoundError{Service: service})
	}

	if err := os.WriteFile(entry.Path, data, 0o644); err != nil {
		return fmt.Errorf("save manifest %s: %w", entry.Path, err)
	}

	return nil
}
