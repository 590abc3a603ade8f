package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format is a serialization of a report.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("error encoding report as YAML: %w", err)
	}
	return enc.Close()
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("error encoding report as JSON: %w", err)
	}
	return nil
}

// Write serializes r in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	if f == FormatJSON {
		return r.WriteJSON(w)
	}
	return r.WriteYAML(w)
}

// Load reads a report written by Write in either format.
func Load(rd io.Reader) (*Report, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("error reading report: %w", err)
	}
	var r Report
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if !gjson.ValidBytes(trimmed) {
			return nil, fmt.Errorf("error decoding report: invalid JSON")
		}
		if err := json.Unmarshal(trimmed, &r); err != nil {
			return nil, fmt.Errorf("error decoding report: %w", err)
		}
		return &r, nil
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("error decoding report: %w", err)
	}
	return &r, nil
}
