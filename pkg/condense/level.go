// Package condense shrinks file content through graduated,
// structure-aware transforms.
package condense

import (
	"fmt"
	"strings"
)

// Level is how aggressively a file is condensed. Levels are ordered.
type Level int

const (
	None Level = iota
	Light
	Moderate
	Heavy
	Maximum
)

// Levels lists every level from least to most aggressive.
var Levels = []Level{None, Light, Moderate, Heavy, Maximum}

func (l Level) String() string {
	switch l {
	case None:
		return "NONE"
	case Light:
		return "LIGHT"
	case Moderate:
		return "MODERATE"
	case Heavy:
		return "HEAVY"
	case Maximum:
		return "MAXIMUM"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return None, fmt.Errorf("unknown condense level %q", s)
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
