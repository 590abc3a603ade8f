package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_ByExtension(t *testing.T) {
	assert.Equal(t, "go", Detect("cmd/app/main.go").Name)
	assert.Equal(t, "python", Detect("src/pkg/mod.py").Name)
	assert.Equal(t, "typescript", Detect("web/App.TSX").Name)
	assert.Equal(t, CategoryData, Detect("data/gen.json").Category)
	assert.Equal(t, CategoryMarkup, Detect("README.md").Category)
}

func TestDetect_ByFilename(t *testing.T) {
	assert.Equal(t, "dockerfile", Detect("deploy/Dockerfile").Name)
	assert.Equal(t, "dockerfile", Detect("Dockerfile.dev").Name)
	assert.Equal(t, "make", Detect("Makefile").Name)
	assert.Equal(t, "gomod", Detect("go.mod").Name)
}

func TestDetect_CommentSyntax(t *testing.T) {
	assert.Equal(t, "//", Detect("a.go").LineComment)
	assert.Equal(t, "#", Detect("a.py").LineComment)
	assert.True(t, Detect("a.py").Docstrings)
	assert.Equal(t, "--", Detect("a.sql").LineComment)
	assert.Empty(t, Detect("a.md").LineComment)
}

func TestDetect_Unknown(t *testing.T) {
	l := Detect("blob.bin")
	assert.Equal(t, Unknown, l)
	assert.False(t, l.IsSource())
}
