package priority

import (
	"path"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/kcaldas/condenser/pkg/lang"
)

// File is what the analyzer needs to know about a candidate. Head holds
// the first few kilobytes of content for the shallow generated-code scan.
type File struct {
	Path      string
	SizeBytes int64
	Head      string
}

// HeadSize is how much of a file's text Classify looks at.
const HeadSize = 4 << 10

// canonical files describe or bootstrap a project.
var canonicalNames = map[string]bool{
	"go.mod":           true,
	"package.json":     true,
	"pyproject.toml":   true,
	"setup.py":         true,
	"setup.cfg":        true,
	"requirements.txt": true,
	"cargo.toml":       true,
	"pom.xml":          true,
	"build.gradle":     true,
	"build.gradle.kts": true,
	"gemfile":          true,
	"composer.json":    true,
	"makefile":         true,
	"dockerfile":       true,
	"cmakelists.txt":   true,
}

var entrypointNames = map[string]bool{
	"main.go":     true,
	"main.py":     true,
	"__main__.py": true,
	"app.py":      true,
	"manage.py":   true,
	"index.js":    true,
	"index.ts":    true,
	"main.js":     true,
	"main.ts":     true,
	"main.rs":     true,
	"lib.rs":      true,
	"main.java":   true,
	"main.c":      true,
	"main.cpp":    true,
}

var testDirs = map[string]bool{
	"test": true, "tests": true, "testdata": true, "__tests__": true, "spec": true, "e2e": true,
}

var excludedDirs = map[string]bool{
	"vendor": true, "node_modules": true, "third_party": true, "build": true, "dist": true,
	"out": true, "target": true, "generated": true, ".git": true,
}

const canonicalMaxDepth = 2

// Analyzer assigns tiers. It is safe for concurrent use once built.
type Analyzer struct {
	critical *gitignore.GitIgnore
	profile  Profile
}

// NewAnalyzer creates an analyzer. criticalPaths use gitignore pattern
// syntax and always force CRITICAL.
func NewAnalyzer(criticalPaths []string, profile Profile) *Analyzer {
	a := &Analyzer{profile: profile}
	var patterns []string
	for _, p := range criticalPaths {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) > 0 {
		a.critical = gitignore.CompileIgnoreLines(patterns...)
	}
	return a
}

// Profile returns the language profile the analyzer was built with.
func (a *Analyzer) Profile() Profile { return a.profile }

// IsCritical reports whether p matches one of the critical path patterns.
func (a *Analyzer) IsCritical(p string) bool {
	return a.critical != nil && a.critical.MatchesPath(normalize(p))
}

// Classify returns the tier of f. The result depends only on f and the
// analyzer's configuration.
func (a *Analyzer) Classify(f File) Tier {
	p := normalize(f.Path)
	if a.IsCritical(p) {
		return Critical
	}
	base := strings.ToLower(path.Base(p))
	dirs := dirSegments(p)

	if !underAny(dirs, excludedDirs) && !underAny(dirs, testDirs) && isCanonical(p, base, dirs) {
		return Critical
	}

	l := lang.Detect(p)
	if !l.IsSource() {
		return Low
	}
	if underAny(dirs, excludedDirs) || looksGenerated(base, f.Head) {
		return Low
	}
	if isTestFile(base, dirs) {
		return Medium
	}
	if a.profile.IsDominant(l.Name) {
		return High
	}
	return Medium
}

func isCanonical(p, base string, dirs []string) bool {
	depth := len(dirs)
	if strings.HasPrefix(base, "readme") && depth <= canonicalMaxDepth-1 {
		return true
	}
	if canonicalNames[base] && depth <= canonicalMaxDepth-1 {
		return true
	}
	if entrypointNames[base] && depth <= canonicalMaxDepth {
		return true
	}
	// cmd/<name>/main.go
	return base == "main.go" && depth == 2 && dirs[0] == "cmd"
}

func isTestFile(base string, dirs []string) bool {
	if underAny(dirs, testDirs) {
		return true
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	return strings.HasSuffix(stem, "_test") ||
		strings.HasPrefix(stem, "test_") ||
		strings.HasSuffix(stem, ".test") ||
		strings.HasSuffix(stem, ".spec")
}

func looksGenerated(base, head string) bool {
	if strings.Contains(base, ".min.") || strings.HasSuffix(base, ".pb.go") || strings.HasSuffix(base, "_gen.go") {
		return true
	}
	if head == "" {
		return false
	}
	if strings.Contains(head, "Code generated") && strings.Contains(head, "DO NOT EDIT") {
		return true
	}
	if strings.Contains(head, "@generated") {
		return true
	}
	lines := strings.Count(head, "\n") + 1
	return len(head)/lines > 500
}

func underAny(dirs []string, set map[string]bool) bool {
	for _, d := range dirs {
		if set[strings.ToLower(d)] {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func dirSegments(p string) []string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}

// Depth is the number of directories above p.
func Depth(p string) int { return len(dirSegments(normalize(p))) }

// Key is the ordering key of a classified file.
type Key struct {
	Tier      Tier
	Path      string
	SizeBytes int64
}

// Less orders by tier, then shallower path, then smaller size, then path.
func Less(a, b Key) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	if da, db := Depth(a.Path), Depth(b.Path); da != db {
		return da < db
	}
	if a.SizeBytes != b.SizeBytes {
		return a.SizeBytes < b.SizeBytes
	}
	return a.Path < b.Path
}

// Order returns the indices of keys in priority order.
func Order(keys []Key) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return Less(keys[idx[i]], keys[idx[j]]) })
	return idx
}
