package commands

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteParsesFlags(t *testing.T) {
	r := NewRegistry("simdemo")
	var frames int
	var rest []string
	fs := r.Register("run", "step the scenario", func(fs *flag.FlagSet) error {
		rest = fs.Args()
		return nil
	})
	fs.IntVar(&frames, "frames", 1, "frames to simulate")

	require.NoError(t, r.Execute([]string{"run", "-frames", "120", "scene.yaml"}))
	assert.Equal(t, 120, frames)
	assert.Equal(t, []string{"scene.yaml"}, rest)
}

func TestExecuteErrors(t *testing.T) {
	r := NewRegistry("simdemo")
	boom := errors.New("boom")
	r.Register("fail", "always fails", func(*flag.FlagSet) error { return boom })
	r.SetOutput(io.Discard)

	assert.Error(t, r.Execute(nil))
	assert.ErrorIs(t, r.Execute([]string{"fly"}), ErrUnknownCommand)
	assert.ErrorIs(t, r.Execute([]string{"fail"}), boom)
	assert.ErrorIs(t, r.Execute([]string{"fail", "-h"}), flag.ErrHelp)
	assert.Error(t, r.Execute([]string{"fail", "-nope"}))
}

func TestNamesAndUsage(t *testing.T) {
	r := NewRegistry("simdemo")
	noop := func(*flag.FlagSet) error { return nil }
	r.Register("view", "open the viewer", noop)
	r.Register("run", "step headless", noop)

	assert.Equal(t, []string{"run", "view"}, r.Names())

	var buf bytes.Buffer
	r.Usage(&buf)
	assert.Contains(t, buf.String(), "usage: simdemo <command>")
	assert.Contains(t, buf.String(), "run")
	assert.Contains(t, buf.String(), "open the viewer")
}
