package resolver

import "fmt"

// Kind tags a Result.
type Kind int

const (
	KindDirectMedia Kind = iota + 1
	KindAlbum
	KindUnresolvable
	KindUnreachable
)

func (k Kind) String() string {
	switch k {
	case KindDirectMedia:
		return "DirectMedia"
	case KindAlbum:
		return "Album"
	case KindUnresolvable:
		return "Unresolvable"
	case KindUnreachable:
		return "Unreachable"
	default:
		return "Unknown"
	}
}

// Result is the outcome of Resolve. URL is set for DirectMedia and Album,
// Err for the two failure kinds.
type Result struct {
	Kind Kind
	URL  string
	Err  error
}

func DirectMedia(u string) Result { return Result{Kind: KindDirectMedia, URL: u} }

func Album(archiveURL string) Result { return Result{Kind: KindAlbum, URL: archiveURL} }

func Unresolvable(err error) Result { return Result{Kind: KindUnresolvable, Err: err} }

func Unreachable(err error) Result { return Result{Kind: KindUnreachable, Err: err} }

// OK reports whether the result carries a URL to fetch.
func (r Result) OK() bool {
	return r.Kind == KindDirectMedia || r.Kind == KindAlbum
}

func (r Result) String() string {
	if r.OK() {
		return fmt.Sprintf("%s(%s)", r.Kind, r.URL)
	}
	return r.Kind.String()
}
