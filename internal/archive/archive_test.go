package archive_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvielma/cultivar/internal/archive"
	"github.com/rvielma/cultivar/pkg/domain"
)

func TestWrite_DateShardedRecord(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2026, 3, 9, 14, 30, 5, 0, time.UTC)
	w := archive.NewWriter(root, archive.WithClock(func() time.Time { return at }))

	record := &domain.ArchiveRecord{
		Target:     domain.NodeAddress{Sequence: "intro", ID: 4},
		ContentKey: "bot.greet.morning",
		Accepted:   []string{"Morning!"},
	}
	path, err := w.Write(record)
	require.NoError(t, err)

	wantDir := filepath.Join(root, "2026", "03", "09")
	assert.Equal(t, wantDir, filepath.Dir(path))

	hash := archive.TargetHash(record.Target, record.ContentKey)
	assert.Equal(t, "20260309T143005_"+hash+".json", filepath.Base(path))

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, at, record.CreatedAt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back domain.ArchiveRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, record.ID, back.ID)
	assert.Equal(t, []string{"Morning!"}, back.Accepted)
}

func TestTargetHash_StableAndDiscriminating(t *testing.T) {
	a := domain.NodeAddress{Sequence: "intro", ID: 4}
	assert.Equal(t,
		archive.TargetHash(a, "bot.greet.morning"),
		archive.TargetHash(a, "bot.greet.morning"))
	assert.NotEqual(t,
		archive.TargetHash(a, "bot.greet.morning"),
		archive.TargetHash(a, "bot.greet.evening"))
	assert.NotEqual(t,
		archive.TargetHash(a, "bot.greet.morning"),
		archive.TargetHash(domain.NodeAddress{Sequence: "intro", ID: 5}, "bot.greet.morning"))
	assert.Len(t, archive.TargetHash(a, "bot.greet.morning"), 16)
}

func TestWrite_PreservesExistingIdentity(t *testing.T) {
	w := archive.NewWriter(t.TempDir())
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	record := &domain.ArchiveRecord{ID: "fixed-id", CreatedAt: at}

	_, err := w.Write(record)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", record.ID)
	assert.Equal(t, at, record.CreatedAt)
}
