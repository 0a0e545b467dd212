package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Actor:     "accountant",
		Action:    "entry_posted",
		Details:   "Opening balances, 3 lines",
		Ref:       "2025-01-001",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "entry_posted", entries[0].Action)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Action = "account_created"
	e2.Ref = "c0ffee"
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "entry_posted", entries[0].Action)
	assert.Equal(t, "account_created", entries[1].Action)
}

func TestLogRecord(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "clerk")
	l.now = func() time.Time { return testTime }

	require.NoError(t, l.Record("account_created", "1.1.4 Petty Cash", "abc"))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got := entries[0]
	assert.True(t, testTime.Equal(got.Timestamp))
	assert.Equal(t, "clerk", got.Actor)
	assert.Equal(t, "1.1.4 Petty Cash", got.Details)
	assert.Equal(t, "abc", got.Ref)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "audit-log.csv"), []byte("timestamp,actor,action,details,ref\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 fields")
}

func TestUnmarshalEntry_BadTimestamp(t *testing.T) {
	row := MarshalEntry(testEntry())
	row[colTimestamp] = "yesterday"
	_, err := UnmarshalEntry(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")
}

func TestTimestampFormat(t *testing.T) {
	row := MarshalEntry(testEntry())
	assert.Equal(t, "2025-01-15T10:30:00Z", row[colTimestamp])
}

func TestAppend_CreatesDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
