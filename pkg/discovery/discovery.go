// Package discovery walks a directory and yields the text files a run
// should consider.
package discovery

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// DefaultIgnoreFiles are read from the root of the walk.
var DefaultIgnoreFiles = []string{".gitignore", ".condenserignore"}

// DefaultPatterns are always ignored.
var DefaultPatterns = []string{".git/", ".hg/", ".svn/", ".condenserignore"}

const DefaultMaxFileBytes = 1 << 20

// File is one discovered text file. Path is relative to the root and uses
// forward slashes.
type File struct {
	Path      string
	SizeBytes int64
	Text      string
}

// Skipped records why a file was left out.
type Skipped struct {
	Path   string
	Reason string
}

type Options struct {
	MaxFileBytes int64
	IgnoreFiles  []string
	Patterns     []string
}

type Result struct {
	Files   []File
	Skipped []Skipped
}

// Walker discovers files on a filesystem.
type Walker struct {
	fs   afero.Fs
	opts Options
}

func NewWalker(fs afero.Fs, opts Options) *Walker {
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = DefaultMaxFileBytes
	}
	if opts.IgnoreFiles == nil {
		opts.IgnoreFiles = DefaultIgnoreFiles
	}
	return &Walker{fs: fs, opts: opts}
}

// NewOsWalker discovers files on the local disk.
func NewOsWalker(opts Options) *Walker {
	return NewWalker(afero.NewOsFs(), opts)
}

// Walk returns the text files under root sorted by path.
func (w *Walker) Walk(ctx context.Context, root string) (Result, error) {
	ignorer, err := w.ignorer(root)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = afero.Walk(w.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if ignorer.MatchesPath(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if ignorer.MatchesPath(rel) {
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if info.Size() > w.opts.MaxFileBytes {
			res.Skipped = append(res.Skipped, Skipped{Path: rel, Reason: fmt.Sprintf("larger than %d bytes", w.opts.MaxFileBytes)})
			return nil
		}

		content, err := afero.ReadFile(w.fs, p)
		if err != nil {
			return fmt.Errorf("error reading file %s: %w", rel, err)
		}
		if mime := mimetype.Detect(content); !isText(mime) {
			res.Skipped = append(res.Skipped, Skipped{Path: rel, Reason: "not text (" + mime.String() + ")"})
			return nil
		}
		res.Files = append(res.Files, File{Path: rel, SizeBytes: info.Size(), Text: string(content)})
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("error walking directory: %w", err)
	}

	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Path < res.Files[j].Path })
	return res, nil
}

func (w *Walker) ignorer(root string) (*gitignore.GitIgnore, error) {
	patterns := append([]string(nil), DefaultPatterns...)
	for _, name := range w.opts.IgnoreFiles {
		content, err := afero.ReadFile(w.fs, filepath.Join(root, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", name, err)
		}
		patterns = append(patterns, strings.Split(string(content), "\n")...)
	}
	patterns = append(patterns, w.opts.Patterns...)
	return gitignore.CompileIgnoreLines(patterns...), nil
}

// isText accepts text/plain and everything derived from it, which covers
// source code, JSON, CSV and markup.
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Join builds a path below root in slash form.
func Join(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(path.Clean(rel)))
}
