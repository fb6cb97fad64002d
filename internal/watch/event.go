package watch

import "github.com/fsnotify/fsnotify"

// Kind classifies one filesystem change.
type Kind string

const (
	KindCreate     Kind = "create"
	KindModify     Kind = "modify"
	KindRemove     Kind = "remove"
	KindRenameFrom Kind = "rename_from"
	KindRenameTo   Kind = "rename_to"
	KindOther      Kind = "other"
)

// Event is one coalesced change delivered to a session's consumer.
type Event struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
	// Attrib is set when the window included an attribute-only change
	// (permissions, timestamps) for this path.
	Attrib bool `json:"attrib,omitempty"`
}

// Batch is the unit of emission: every coalesced event from one debounce
// window, flushed together.
type Batch []Event

// kindOf maps a raw fsnotify operation to the wire kind. fsnotify reports a
// rename's old path as Rename and the new path as a fresh Create, so
// rename_to never originates here; it exists for notifiers that report it.
// Chmod is attribute-only and handled separately by the coalescing buffer.
func kindOf(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Create):
		return KindCreate
	case op.Has(fsnotify.Write):
		return KindModify
	case op.Has(fsnotify.Remove):
		return KindRemove
	case op.Has(fsnotify.Rename):
		return KindRenameFrom
	default:
		return KindOther
	}
}
