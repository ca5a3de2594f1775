package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"type":"doc","version":1,"content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Notes"}]},{"type":"paragraph","content":[{"type":"text","text":"done","marks":[{"type":"em"}]}]}]}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestToMarkdownFromStdin(t *testing.T) {
	out, err := run(t, sample, "to-md")
	require.NoError(t, err)
	assert.Equal(t, "## Notes\n\n*done*\n", out)
}

func TestToHTML(t *testing.T) {
	out, err := run(t, sample, "to-html", "-")
	require.NoError(t, err)
	assert.Equal(t, "<h2>Notes</h2><p><em>done</em></p>\n", out)
}

func TestFromMarkdownToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.json")
	_, err := run(t, "## Notes\n\n*done*\n", "from-md", "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type": "heading"`)
	assert.Contains(t, string(data), `"type": "em"`)
}

func TestFromHTMLStrictMarkOrderFromEnv(t *testing.T) {
	_, err := run(t, "<p><em><strong>x</strong></em></p>", "from-html")
	require.NoError(t, err)

	t.Setenv("ADFCONV_STRICT_MARK_ORDER", "true")
	_, err = run(t, "<p><em><strong>x</strong></em></p>", "from-html")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	out, err := run(t, sample, "validate")
	require.NoError(t, err)
	assert.Equal(t, "valid: 2 blocks, 0 raw nodes\n", out)

	_, err = run(t, `{"type":"doc","version":1,"content":[{"type":"heading","attrs":{"level":2,"color":"red"}}]}`, "validate")
	require.Error(t, err)

	_, err = run(t, `{"type":"doc","version":1,"content":[{"type":"heading","attrs":{"level":2,"color":"red"}}]}`, "validate", "--lenient")
	require.NoError(t, err)
}

func TestVerify(t *testing.T) {
	out, err := run(t, sample, "verify")
	require.NoError(t, err)
	assert.Equal(t, "html: unchanged\nmarkdown: unchanged\n", out)

	_, err = run(t, sample, "verify", "--via", "rtf")
	require.Error(t, err)
}

func TestPreview(t *testing.T) {
	out, err := run(t, sample, "preview", "--style", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Notes")
	assert.Contains(t, out, "done")
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.md"), []byte("- [ ] b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644))
	outDir := filepath.Join(dir, "out")

	_, err := run(t, "", "batch", dir, "-o", outDir)
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(outDir, "a.json"))
	require.NoError(t, err)
	assert.Contains(t, string(a), `"type": "heading"`)

	b, err := os.ReadFile(filepath.Join(outDir, "sub", "b.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type": "taskList"`)

	_, err = os.Stat(filepath.Join(outDir, "skip.json"))
	assert.True(t, os.IsNotExist(err))
}
