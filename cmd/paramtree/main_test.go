package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docopt/docopt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Out
	Out = log.New(&buf, "", 0)
	t.Cleanup(func() { Out = prev })
	return &buf
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const config = `threads: 4
log_throttling:
  count: 0
  window: 0
`

func TestTreeCommand(t *testing.T) {
	out := capture(t)
	path := writeFile(t, "maxscale.yaml", config)

	require.NoError(t, tree(docopt.Opts{"<file>": path, "--keep-primitive": false, "--json": false}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "   1 threads = 4", lines[0])
	assert.Equal(t, "   2 log_throttling:", lines[1])
	assert.Equal(t, "   3   count = 0", lines[2])
}

func TestSetCommand(t *testing.T) {
	out := capture(t)
	path := writeFile(t, "maxscale.yaml", config)

	opts := docopt.Opts{
		"<file>":       path,
		"<assignment>": []string{"3=10"},
		"--by-path":    false,
		"--json":       true,
		"--apply":      false,
	}
	require.NoError(t, set(opts))
	assert.Equal(t, `{"log_throttling":{"count":10,"window":0}}`, strings.TrimSpace(out.String()))
}

func TestSetCommandUnknownNode(t *testing.T) {
	capture(t)
	path := writeFile(t, "maxscale.yaml", config)

	opts := docopt.Opts{
		"<file>":       path,
		"<assignment>": []string{"99=1"},
		"--by-path":    false,
		"--json":       false,
		"--apply":      false,
	}
	assert.Error(t, set(opts))
}

func TestDiffCommand(t *testing.T) {
	out := capture(t)
	base := writeFile(t, "base.json", `[{"id": "a", "state": "Running"}, {"id": "b", "state": "Running"}]`)
	updated := writeFile(t, "updated.json", `[{"id": "a", "state": "Down"}, {"id": "c", "state": "Running"}]`)

	opts := docopt.Opts{"<base>": base, "<updated>": updated, "--id": "id", "--color": "never"}
	require.NoError(t, diff(opts))

	text := out.String()
	assert.Contains(t, text, "+ c")
	assert.Contains(t, text, "- b")
	assert.Contains(t, text, "~ a")
	assert.Contains(t, text, "update state: Running -> Down")
	assert.Contains(t, text, "0 unchanged")
}
