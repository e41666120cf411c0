package diag

// Severity ranks a build diagnostic. None of them fail a build on their
// own; failures travel as errors.
type Severity uint8

const (
	// SevInfo notes legal but unusual graphs, e.g. a module requiring itself.
	SevInfo Severity = iota
	// SevWarning is printed after a build that still succeeded.
	SevWarning
	// SevError is never produced by the builder itself; plugins may add it
	// to Compilation.Warnings.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
