package cli

import (
	"strings"

	"github.com/kcaldas/condenser/pkg/report"
)

// bundle concatenates the condensed files, each under a one-line header.
func bundle(rep *report.Report) string {
	var b strings.Builder
	for _, f := range rep.Files {
		b.WriteString("==> ")
		b.WriteString(f.Path)
		b.WriteString(" [")
		b.WriteString(f.Level.String())
		b.WriteString("] <==\n")
		b.WriteString(f.Text)
		if !strings.HasSuffix(f.Text, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
