package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogsNewestFirstWithFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := NewIsolatedLogger(path)

	l.Info("ingest", "first", map[string]interface{}{"n": 1})
	l.Warn("ingest", "second", nil)
	l.Info("chat", "third", nil)
	l.Debug("chat", "below file level", nil)
	require.NoError(t, l.Sync())

	all, err := l.GetLogs(LogQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Message)
	assert.Equal(t, "chat", all[0].Module)

	warns, err := l.GetLogs(LogQuery{Level: "WARN"})
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "second", warns[0].Message)

	ingest, err := l.GetLogs(LogQuery{Module: "ingest", Limit: 10})
	require.NoError(t, err)
	require.Len(t, ingest, 2)
	assert.Equal(t, "second", ingest[0].Message)
	assert.EqualValues(t, 1, ingest[1].Details["n"])

	found, err := l.GetLogById(all[1].Id)
	require.NoError(t, err)
	assert.Equal(t, "second", found.Message)

	_, err = l.GetLogById("nope")
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestGetLogsPagination(t *testing.T) {
	l := NewIsolatedLogger(filepath.Join(t.TempDir(), "app.log"))
	for _, msg := range []string{"a", "b", "c", "d"} {
		l.Info("page", msg, nil)
	}
	require.NoError(t, l.Sync())

	page, err := l.GetLogs(LogQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Message)
	assert.Equal(t, "b", page[1].Message)

	page, err = l.GetLogs(LogQuery{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestGetLogsMissingFileAndNop(t *testing.T) {
	l := NewIsolatedLogger(filepath.Join(t.TempDir(), "missing.log"))
	logs, err := l.GetLogs(LogQuery{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, logs)

	nop := NewNopLogger()
	nop.Error("x", "ignored", map[string]interface{}{"error": "boom"})
	logs, err = nop.GetLogs(LogQuery{Limit: 10, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
