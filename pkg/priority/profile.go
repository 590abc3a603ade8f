package priority

import (
	"sort"
	"strings"

	"github.com/kcaldas/condenser/pkg/lang"
)

// DominantShare is the share of source bytes a language needs to count as
// dominant.
const DominantShare = 0.25

// Profile records which languages dominate a corpus.
type Profile struct {
	Dominant []string
}

// IsDominant reports whether name is one of the dominant languages.
func (p Profile) IsDominant(name string) bool {
	for _, d := range p.Dominant {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// BuildProfile measures source bytes per language across files. The
// largest language is always dominant. A non-empty override is used as is.
func BuildProfile(files []File, override []string) Profile {
	if len(override) > 0 {
		return Profile{Dominant: append([]string(nil), override...)}
	}
	bytes := map[string]int64{}
	var total int64
	for _, f := range files {
		l := lang.Detect(f.Path)
		if !l.IsSource() {
			continue
		}
		size := f.SizeBytes
		if size <= 0 {
			size = 1
		}
		bytes[l.Name] += size
		total += size
	}
	if total == 0 {
		return Profile{}
	}

	names := make([]string, 0, len(bytes))
	for n := range bytes {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if bytes[names[i]] != bytes[names[j]] {
			return bytes[names[i]] > bytes[names[j]]
		}
		return names[i] < names[j]
	})

	dominant := []string{names[0]}
	for _, n := range names[1:] {
		if float64(bytes[n])/float64(total) >= DominantShare {
			dominant = append(dominant, n)
		}
	}
	return Profile{Dominant: dominant}
}
