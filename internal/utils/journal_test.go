package utils

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type journalEntry struct {
	message  string
	priority journal.Priority
	fields   map[string]string
}

func captureJournal(t *testing.T) *[]journalEntry {
	t.Helper()
	var entries []journalEntry
	oldSend := journalSend
	journalSend = func(message string, priority journal.Priority, fields map[string]string) error {
		entries = append(entries, journalEntry{message, priority, fields})
		return nil
	}
	t.Cleanup(func() { journalSend = oldSend })
	return &entries
}

func TestJournalHandler_Fields(t *testing.T) {
	entries := captureJournal(t)

	logger := slog.New(NewJournalHandler("lightsd", slog.LevelDebug))
	logger.With("light", "wifi").WithGroup("frame").Warn("mcu: queue full",
		"level", 16, "dropped", true, slog.Group("peer", "port", 9010))

	require.Len(t, *entries, 1)
	e := (*entries)[0]
	assert.Equal(t, "mcu: queue full", e.message)
	assert.Equal(t, journal.PriWarning, e.priority)
	assert.Equal(t, map[string]string{
		"SYSLOG_IDENTIFIER": "lightsd",
		"LIGHT":             "wifi",
		"FRAME_LEVEL":       "16",
		"FRAME_DROPPED":     "true",
		"FRAME_PEER_PORT":   "9010",
	}, e.fields)
}

func TestJournalHandler_LevelVar(t *testing.T) {
	entries := captureJournal(t)

	var lv slog.LevelVar
	lv.Set(slog.LevelWarn)
	logger := slog.New(NewJournalHandler("lightsd", &lv))

	logger.Info("hidden")
	lv.Set(slog.LevelDebug)
	logger.Debug("shown")

	require.Len(t, *entries, 1)
	assert.Equal(t, "shown", (*entries)[0].message)
	assert.Equal(t, journal.PriDebug, (*entries)[0].priority)
}

func TestNewLogger_JournalFallsBackToText(t *testing.T) {
	oldAvailable := journalAvailable
	journalAvailable = func() bool { return false }
	t.Cleanup(func() { journalAvailable = oldAvailable })

	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "journal")
	logger.Info("light: state changed")
	assert.Contains(t, buf.String(), "msg=\"light: state changed\"")
}

func TestNewLogger_Journal(t *testing.T) {
	entries := captureJournal(t)
	oldAvailable := journalAvailable
	journalAvailable = func() bool { return true }
	t.Cleanup(func() {
		journalAvailable = oldAvailable
		SetLevel("info")
	})

	var buf bytes.Buffer
	logger := NewLogger(&buf, "error", "journal")
	logger.Warn("suppressed")
	logger.Error("light: hardware update failed")

	assert.Empty(t, buf.String())
	require.Len(t, *entries, 1)
	assert.Equal(t, journal.PriErr, (*entries)[0].priority)
}
