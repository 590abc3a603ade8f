package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// hasStdinInput checks if data is available from stdin (pipe or redirect)
func hasStdinInput() bool {
	return !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// readInput reads all of r. Unlike line scanning it keeps the text
// byte-for-byte, which the estimate must see.
func readInput(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// readSource reads the file named by args or, for "-" or a pipe, stdin.
// The returned name is "-" for stdin.
func readSource(cmd *cobra.Command, args []string) (string, string, error) {
	switch {
	case len(args) == 1 && args[0] != "-":
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("error reading %s: %w", args[0], err)
		}
		return args[0], string(data), nil
	case len(args) == 1 || hasStdinInput():
		text, err := readInput(cmd.InOrStdin())
		return "-", text, err
	}
	return "", "", fmt.Errorf("no input: pass a file or pipe text on stdin")
}
