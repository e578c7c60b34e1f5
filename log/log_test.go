// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextFollowsRoot(t *testing.T) {
	prev := ethlog.Root()
	t.Cleanup(func() { ethlog.SetDefault(prev) })

	// logger created before the handler is installed
	logger := WithContext("pkg", "oracle")

	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelInfo)
	Init(LevelHandler(&lvl, JSONHandler(&buf)))

	logger.Info("feed updated", "round", 1)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "oracle", record["pkg"])
	assert.Equal(t, "feed updated", record["msg"])
	assert.EqualValues(t, 1, record["round"])

	buf.Reset()
	lvl.Set(LevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.True(t, logger.Enabled(t.Context(), LevelDebug))

	lvl.Set(LevelError)
	buf.Reset()
	Warn("dropped")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"trace": LevelTrace,
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"crit":  LevelCrit,
	} {
		got, ok := ParseLevel(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
		assert.Equal(t, strings.ToUpper(name), LevelName(got))
	}
	_, ok := ParseLevel("verbose")
	assert.False(t, ok)

	assert.Equal(t, LevelInfo, FromLegacyLevel(LegacyLevelInfo))
	assert.Equal(t, LevelTrace, FromLegacyLevel(LegacyLevelTrace))
}
