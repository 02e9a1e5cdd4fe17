package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", &buf)

	l.Info("hidden")
	l.Warn("shown", "table", "orders")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "table=orders")
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New("chatty", &buf)

	l.Debug("hidden")
	l.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponentNames(t *testing.T) {
	var buf bytes.Buffer
	root := New("info", &buf)

	Resolver(root).Info("r")
	Snapshot(root).Info("s")
	DB(root).Info("d")

	out := buf.String()
	assert.Contains(t, out, "snapdiff.resolver")
	assert.Contains(t, out, "snapdiff.snapshot")
	assert.Contains(t, out, "snapdiff.db")
}
