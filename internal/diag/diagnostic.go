package diag

import (
	"fmt"
	"strings"
)

// Diagnostic is a non-fatal finding about the build, tied to a module id
// when one applies.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Module   string
	Message  string
	Notes    []string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", d.Severity, d.Code)
	if d.Module != "" {
		fmt.Fprintf(&sb, " %s", d.Module)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	for _, note := range d.Notes {
		sb.WriteString("\n  note: ")
		sb.WriteString(note)
	}
	return sb.String()
}
