package resolve

import (
	"fmt"
	"strings"
)

// ResolutionError reports a specifier that maps to no existing file.
type ResolutionError struct {
	Specifier string
	BaseDir   string
	Tried     []string
	// Importer is the id of the requiring module; empty for entries.
	Importer string
	// Chain lists module ids from the entry down to Importer.
	Chain []string
}

func (e *ResolutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cannot resolve %q", e.Specifier)
	if e.Importer != "" {
		fmt.Fprintf(&sb, " required by %s", e.Importer)
	} else {
		fmt.Fprintf(&sb, " in %s", e.BaseDir)
	}
	if len(e.Chain) > 1 {
		fmt.Fprintf(&sb, " (via %s)", strings.Join(e.Chain, " -> "))
	}
	return sb.String()
}
