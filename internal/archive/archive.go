// Package archive persists the full audit trail of every generation
// attempt. Records are date-sharded and named so a run can be located by
// when it happened and which node it targeted.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/rvielma/cultivar/pkg/domain"
)

// Writer stores archive records under a root directory, sharded by
// year/month/day.
type Writer struct {
	root   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures the writer.
type Option func(*Writer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter creates a writer rooted at dir.
func NewWriter(root string, opts ...Option) *Writer {
	w := &Writer{
		root:   root,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// TargetHash is the stable non-cryptographic hash of a target identity. It
// stays constant across runs so all records for one node are greppable by
// suffix.
func TargetHash(target domain.NodeAddress, contentKey string) string {
	h := xxhash.Sum64String(fmt.Sprintf("%s:%d:%s", target.Sequence, target.ID, contentKey))
	return fmt.Sprintf("%016x", h)
}

// Write assigns the record an id and timestamp if unset and persists it as
// pretty-printed JSON under <root>/<year>/<month>/<day>/. It returns the
// written path.
func (w *Writer) Write(record *domain.ArchiveRecord) (string, error) {
	now := w.now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	dir := filepath.Join(w.root, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", now.Format("20060102T150405"), TargetHash(record.Target, record.ContentKey))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal archive record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive record: %w", err)
	}

	w.logger.Debug("archive record written", "path", path, "target", record.Target)
	return path, nil
}
