package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

const renderWidth = 100

// renderMarkdown styles md for terminals and writes it raw elsewhere.
func renderMarkdown(w io.Writer, md string) error {
	if !isTerminal(w) {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return fmt.Errorf("error creating renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("error rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
