package diag

import "fmt"

// Code identifies a class of diagnostic.
type Code uint16

const (
	UnknownCode Code = 0

	// Graph
	GraphRequireCycle    Code = 1001
	GraphSelfRequire     Code = 1002
	GraphDuplicateTarget Code = 1003
	GraphSpellingClash   Code = 1004

	// Cache
	CacheReadFailed  Code = 2001
	CacheWriteFailed Code = 2002

	// Output
	OutputEmptyChunk Code = 3001
)

var codeName = map[Code]string{
	UnknownCode:          "Unknown",
	GraphRequireCycle:    "RequireCycle",
	GraphSelfRequire:     "SelfRequire",
	GraphDuplicateTarget: "DuplicateTarget",
	GraphSpellingClash:   "SpellingClash",
	CacheReadFailed:      "CacheReadFailed",
	CacheWriteFailed:     "CacheWriteFailed",
	OutputEmptyChunk:     "EmptyChunk",
}

// ID returns the stable short code, e.g. "G1001".
func (c Code) ID() string {
	switch {
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("G%04d", int(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("C%04d", int(c))
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("O%04d", int(c))
	}
	return "E0000"
}

// Title returns the human name of the code.
func (c Code) Title() string {
	if name, ok := codeName[c]; ok {
		return name
	}
	return codeName[UnknownCode]
}

func (c Code) String() string {
	return c.ID()
}
