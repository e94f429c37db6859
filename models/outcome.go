package models

import (
	"fmt"
	"strings"
)

// OutcomeKind is the terminal state of one dispatched entry.
type OutcomeKind int

const (
	OutcomeSaved OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSaved:
		return "saved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reasons attached to skipped and failed outcomes.
const (
	ReasonSelfOrPinned  = "self-or-pinned"
	ReasonRestricted    = "restricted"
	ReasonAlbumExcluded = "album-excluded"
	ReasonGifExcluded   = "gif-excluded"
	ReasonUnreachable   = "unreachable"
	ReasonUnresolvable  = "unresolvable"
	ReasonBadArchive    = "bad-archive"
	ReasonFetchError    = "fetch-error"
)

// Outcome is the result of a fetch-and-persist attempt for one entry.
// Bytes is only meaningful for saved outcomes, Reason only for the others.
type Outcome struct {
	Kind   OutcomeKind
	Bytes  int64
	Reason string
	// Location is the URL that was fetched, when resolution got that far.
	Location string
	Err      error
}

func Saved(n int64) Outcome {
	return Outcome{Kind: OutcomeSaved, Bytes: n}
}

func Skipped(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Reason: reason}
}

func Failed(reason string, err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason, Err: err}
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSaved:
		return fmt.Sprintf("Saved(%d)", o.Bytes)
	default:
		return fmt.Sprintf("%s(%q)", capitalize(o.Kind.String()), o.Reason)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
