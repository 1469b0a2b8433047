package history

import (
	"fmt"

	"ordermgmt/internal/pkg/errs"
)

// Kind distinguishes status changes from notes.
type Kind int

const (
	// KindUnknown is the zero value and never valid.
	KindUnknown Kind = iota
	// KindStatusChange is a move along the status graph.
	KindStatusChange
	// KindNote is a free-text annotation.
	KindNote
)

// String returns the wire name: "status-change", "note" or "unknown".
func (k Kind) String() string {
	switch k {
	case KindStatusChange:
		return "status-change"
	case KindNote:
		return "note"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of String. Matching is exact; "unknown" is rejected.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "status-change":
		return KindStatusChange, nil
	case "note":
		return KindNote, nil
	default:
		return KindUnknown, errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%q is not an event kind", s))
	}
}
