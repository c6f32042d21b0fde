// Package backupdir implements the backup manager as an append-only
// directory of snapshot files named <service>_<timestamp>.yaml.
package backupdir

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skillcoder/reconfigurer/internal/logic/reconfig"
)

const (
	timestampLayout = "20060102_150405"
	snapshotExt     = ".yaml"

	// maxKeyAttempts bounds the suffix search when repeated invocations
	// land inside the same timestamp second.
	maxKeyAttempts = 1000
)

type store struct {
	logger *slog.Logger
	dir    string
	now    func() time.Time
}

// New creates a snapshot store rooted at dir, creating it if needed.
func New(logger *slog.Logger, dir string) (reconfig.BackupStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir %s: %w", dir, err)
	}

	return &store{
		logger: logger,
		dir:    dir,
		now:    time.Now,
	}, nil
}

var _ reconfig.BackupStore = (*store)(nil)

// Snapshot writes data under <service>_<timestamp>. O_EXCL guarantees an
// existing record is never overwritten; on a key collision the name is
// widened with a numeric suffix until a free slot is found.
func (s *store) Snapshot(ctx context.Context, service string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	key := service + "_" + s.now().Format(timestampLayout)

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		id := key
		if attempt > 0 {
			id = fmt.Sprintf("%s_%d", key, attempt)
		}

		err := writeExclusive(filepath.Join(s.dir, id+snapshotExt), data)
		if err != nil {
			if os.IsExist(err) {
				continue
			}

			return "", fmt.Errorf("snapshot %s: %w", service, err)
		}

		return id, nil
	}

	return "", fmt.Errorf("snapshot %s: no free key after %d attempts", service, maxKeyAttempts)
}

// Restore returns the exact bytes stored under id. The record is left in
// place, so restores are repeatable.
func (s *store) Restore(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}

	name := id
	if !strings.HasSuffix(name, snapshotExt) {
		name += snapshotExt
	}

	// Snapshot ids are bare file names; anything path-like is refused.
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("restore: %w", &BackupNotFoundError{ID: id})
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("restore: %w", &BackupNotFoundError{ID: id})
		}

		return nil, fmt.Errorf("restore %s: %w", id, err)
	}

	return data, nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}
