package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func traced(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_TraceLevels(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	l := newGormLogger(log, logger.Warn, 100*time.Millisecond)
	ctx := context.Background()

	// Fast successful query stays quiet at Warn.
	l.Trace(ctx, time.Now(), traced("SELECT 1", 1), nil)
	assert.Empty(t, hook.AllEntries())

	// Missing row is an expected outcome.
	l.Trace(ctx, time.Now(), traced("SELECT * FROM users", 0), gorm.ErrRecordNotFound)
	assert.Empty(t, hook.AllEntries())

	l.Trace(ctx, time.Now(), traced("INSERT INTO tasks", 0), errors.New("disk full"))
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "INSERT INTO tasks", entry.Data["sql"])
	assert.Equal(t, "gorm", entry.Data["component"])
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "disk full")
	hook.Reset()

	l.Trace(ctx, time.Now().Add(-time.Second), traced("UPDATE tasks", 3), nil)
	require.Len(t, hook.AllEntries(), 1)
	entry = hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, int64(3), entry.Data["rows"])
	hook.Reset()

	info := l.LogMode(logger.Info)
	info.Trace(ctx, time.Now(), traced("SELECT 1", 1), nil)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	hook.Reset()

	// LogMode returns a copy; the original level is untouched.
	l.Trace(ctx, time.Now(), traced("SELECT 1", 1), nil)
	assert.Empty(t, hook.AllEntries())

	l.LogMode(logger.Silent).Trace(ctx, time.Now(), traced("INSERT", 0), errors.New("boom"))
	assert.Empty(t, hook.AllEntries())
}

func TestGormLogger_MessageLevels(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	ctx := context.Background()

	l := newGormLogger(log, logger.Warn, time.Second)
	l.Info(ctx, "hidden %d", 1)
	assert.Empty(t, hook.AllEntries())

	l.Warn(ctx, "careful %s", "now")
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "careful now", hook.LastEntry().Message)

	l.Error(ctx, "broken")
	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestNewDB_RejectsUnknownDriver(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	_, err := NewDB("oracle", "whatever", log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported database driver "oracle"`)
}

func TestNewDB_DirectoryFailureKeepsCause(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	log, _ := logtest.NewNullLogger()
	_, err := NewDB("sqlite", filepath.Join(blocker, "sub", "taskit.db"), log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create db dir")
	var pathErr *os.PathError
	assert.True(t, errors.As(pkgerrors.Cause(err), &pathErr))
}
