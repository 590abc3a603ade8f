package discovery

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for p, content := range files {
		require.NoError(t, afero.WriteFile(fs, "/repo/"+p, []byte(content), 0o644))
	}
	return fs
}

func paths(res Result) []string {
	var out []string
	for _, f := range res.Files {
		out = append(out, f.Path)
	}
	return out
}

func TestWalk_HonorsIgnoreFiles(t *testing.T) {
	fs := memFS(t, map[string]string{
		".gitignore":        "build/\n*.log\n",
		".condenserignore":  "docs/private.md\n",
		"main.go":           "package main\n",
		"build/out.go":      "package out\n",
		"debug.log":         "noise\n",
		"docs/guide.md":     "# Guide\n",
		"docs/private.md":   "# Secret\n",
		".git/HEAD":         "ref: refs/heads/main\n",
		"pkg/util/util.go":  "package util\n",
		"data/records.json": `{"a": 1}`,
	})

	res, err := NewWalker(fs, Options{}).Walk(context.Background(), "/repo")
	require.NoError(t, err)

	assert.Equal(t, []string{".gitignore", "data/records.json", "docs/guide.md", "main.go", "pkg/util/util.go"}, paths(res))
}

func TestWalk_SkipsBinaryAndLargeFiles(t *testing.T) {
	fs := memFS(t, map[string]string{
		"logo.png": "\x89PNG\r\n\x1a\n",
		"big.txt":  "0123456789abcdef",
		"ok.txt":   "fine\n",
	})

	res, err := NewWalker(fs, Options{MaxFileBytes: 10}).Walk(context.Background(), "/repo")
	require.NoError(t, err)

	assert.Equal(t, []string{"ok.txt"}, paths(res))
	require.Len(t, res.Skipped, 2)
	reasons := map[string]string{}
	for _, s := range res.Skipped {
		reasons[s.Path] = s.Reason
	}
	assert.Contains(t, reasons["big.txt"], "larger than 10 bytes")
	assert.Contains(t, reasons["logo.png"], "not text")
}

func TestWalk_ExtraPatterns(t *testing.T) {
	fs := memFS(t, map[string]string{
		"a.go":        "package a\n",
		"vendor/b.go": "package b\n",
		"a_test.go":   "package a\n",
	})

	res, err := NewWalker(fs, Options{Patterns: []string{"vendor/", "*_test.go"}}).Walk(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, paths(res))
}

func TestWalk_RecordsSize(t *testing.T) {
	fs := memFS(t, map[string]string{"a.txt": "héllo"})

	res, err := NewWalker(fs, Options{}).Walk(context.Background(), "/repo")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, int64(6), res.Files[0].SizeBytes)
	assert.Equal(t, "héllo", res.Files[0].Text)
}

func TestWalk_Cancelled(t *testing.T) {
	fs := memFS(t, map[string]string{"a.txt": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWalker(fs, Options{}).Walk(ctx, "/repo")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/repo/pkg/a.go", Join("/repo", "pkg/a.go"))
}
