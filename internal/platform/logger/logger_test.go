package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warn, ParseLevel(" warning "))
	assert.Equal(t, Error, ParseLevel("error"))
	assert.Equal(t, Info, ParseLevel(""))
	assert.Equal(t, Info, ParseLevel("nope"))
}

func TestNew_JSON_IncludesAppAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "xiuh", Out: &buf})

	l.With(map[string]any{"user_id": "u1"}).Info("pet adopted", map[string]any{
		"pet_id": "p1",
		"err":    errors.New("boom"),
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pet adopted", entry["msg"])
	assert.Equal(t, "xiuh", entry["app"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "p1", entry["pet_id"])
	assert.Equal(t, "boom", entry["err"])
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Format: FormatText, Out: &buf})

	l.Info("hidden", nil)
	l.Warn("shown", map[string]any{"k": 1})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "shown"))
	assert.Contains(t, out, "k=1")
}
