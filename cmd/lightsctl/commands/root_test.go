package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lightsd/internal/utils"
	"github.com/jmylchreest/lightsd/pkg/client"
)

func TestRootCommand_Flags(t *testing.T) {
	cmd := NewRootCommand(nil, "dev", "none", "unknown", "/run/test.sock")

	socket, err := cmd.PersistentFlags().GetString("socket")
	require.NoError(t, err)
	assert.Equal(t, "/run/test.sock", socket)

	output, err := cmd.PersistentFlags().GetString("output")
	require.NoError(t, err)
	assert.Equal(t, OutputTable, output)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"light", "mcu", "log", "version"})
}

func TestRootCommand_InvalidOutput(t *testing.T) {
	mock := newMockClient()

	_, err := executeCommand(t, mock, "light", "list", "-o", "xml")
	assert.ErrorContains(t, err, `invalid output format "xml"`)
}

func TestNewClient(t *testing.T) {
	cmd := NewRootCommand(nil, "dev", "none", "unknown", "/run/test.sock")
	require.NoError(t, cmd.ParseFlags(nil))
	_, ok := newClient(cmd).(*client.Client)
	assert.True(t, ok)

	require.NoError(t, cmd.ParseFlags([]string{"--url", "http://127.0.0.1:9124"}))
	_, ok = newClient(cmd).(*client.HTTPClient)
	assert.True(t, ok)
}

func TestRootCommand_CreatesClient(t *testing.T) {
	// without an injected client the socket flag decides where to connect
	cmd := NewRootCommand(nil, "dev", "none", "unknown", "/nonexistent/lightsd.sock")
	cmd.SetArgs([]string{"light", "list"})
	cmd.SetOut(&discard{})
	cmd.SetErr(&discard{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/lightsd.sock")
}

func TestRootCommand_LogLevelFlag(t *testing.T) {
	before := utils.GetLevel()
	t.Cleanup(func() { utils.SetLevel(utils.LevelToString(before)) })

	_, err := executeCommand(t, newMockClient(), "light", "list", "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", utils.LevelToString(utils.GetLevel()))
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, newMockClient(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    0.1.0")
	assert.Contains(t, out, "Commit:     abc123")
	assert.Contains(t, out, "Daemon:\n  Version:    1.2.3")

	mock := newMockClient()
	mock.err = errors.New("connection refused")
	out, err = executeCommand(t, mock, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Daemon: not reachable")

	out, err = executeCommand(t, newMockClient(), "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "0.1.0", info["client"]["version"])
	assert.Equal(t, "1.2.3", info["daemon"]["version"])
}

func TestMCUFrameCommand(t *testing.T) {
	mock := newMockClient()

	out, err := executeCommand(t, mock, "mcu", "frame", "128")
	require.NoError(t, err)
	assert.Contains(t, out, "AA0449A110FE55")
	assert.Contains(t, out, "16 (0x10)")
	assert.Contains(t, out, "0xFE")

	out, err = executeCommand(t, mock, "mcu", "frame", "128", "-o", "parseable")
	require.NoError(t, err)
	assert.Equal(t, "brightness=128 level=16 checksum=254 frame=\"AA0449A110FE55\"\n", out)

	_, err = executeCommand(t, mock, "mcu", "frame", "max")
	assert.ErrorContains(t, err, "invalid brightness value")
	assert.Equal(t, []string{"frame 128", "frame 128"}, mock.calls)
}

func TestLogLevelCommand(t *testing.T) {
	mock := newMockClient()

	out, err := executeCommand(t, mock, "log", "level")
	require.NoError(t, err)
	assert.Equal(t, "info\n", out)

	out, err = executeCommand(t, mock, "log", "level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "Daemon log level set to debug")
	assert.Equal(t, "debug", mock.level)

	out, err = executeCommand(t, mock, "log", "level", "-o", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "level: debug\n", out)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
