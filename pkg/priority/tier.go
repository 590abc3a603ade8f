// Package priority classifies files into importance tiers.
package priority

import (
	"fmt"
	"strings"
)

// Tier is the importance class of a file. Lower values are more important.
type Tier int

const (
	Critical Tier = iota
	High
	Medium
	Low
)

// Tiers lists every tier from most to least important.
var Tiers = []Tier{Critical, High, Medium, Low}

func (t Tier) String() string {
	switch t {
	case Critical:
		return "CRITICAL"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	case Low:
		return "LOW"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// ParseTier parses a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return Low, fmt.Errorf("unknown tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
