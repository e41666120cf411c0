package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint // instant event
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeBuild     Scope = iota + 1 // one compiler run
	ScopePhase                      // graph, assemble, emit
	ScopeModule                     // one module build
	ScopeTransform                  // one loader step
)

func (s Scope) String() string {
	switch s {
	case ScopeBuild:
		return "build"
	case ScopePhase:
		return "phase"
	case ScopeModule:
		return "module"
	case ScopeTransform:
		return "transform"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // global, monotonic
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	GID      uint64 // goroutine, for concurrent module spans
	Name     string // "graph", "module:./src/a.js", ...
	Detail   string
	Extra    map[string]string
}
