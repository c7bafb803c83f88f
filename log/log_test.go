package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]bool{"trace": true, "DEBUG": true, "info": true, "warning": true, "crit": true, "loud": false}
	for in, ok := range cases {
		_, err := ParseLevel(in)
		if ok {
			assert.NoError(t, err, in)
		} else {
			assert.Error(t, err, in)
		}
	}
}

func TestModuleFiltering(t *testing.T) {
	var buf bytes.Buffer
	prev := Root()
	defer SetDefault(prev)
	SetDefault(NewLogger(NewTerminalHandlerWithLevel(&buf, LevelTrace, false)))

	DisableModule(HwTest)
	Debug(HwTest, "hidden")
	require.Empty(t, buf.String())

	EnableModule(HwTest)
	defer DisableModule(HwTest)
	Debug(HwTest, "shown", "case", 3)
	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "DEBUG["), line)
	assert.Contains(t, line, "shown")
	assert.Contains(t, line, "module=hwtest")
	assert.Contains(t, line, "case=3")
}

func TestLevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	prev := Root()
	defer SetDefault(prev)
	SetDefault(NewLogger(NewTerminalHandlerWithLevel(&buf, LevelWarn, false)))

	Info(Corpus, "quiet")
	assert.Empty(t, buf.String())
	Warn(Corpus, "loud")
	assert.Contains(t, buf.String(), "WARN ")
}

func TestEnableModules(t *testing.T) {
	defer DisableModule(Compare)
	defer DisableModule(CPU)

	EnableModules(" compare, ,cpu")
	assert.True(t, isModuleEnabled(Compare))
	assert.True(t, isModuleEnabled(CPU))
	assert.False(t, isModuleEnabled("unknown"))
}
