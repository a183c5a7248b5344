// Package fsevent defines the filesystem event vocabulary routed by lograt
// and its mapping from fsnotify operations.
package fsevent

import (
	"os"

	"github.com/fsnotify/fsnotify"
)

// Kind is the type of filesystem change an event describes.
type Kind string

const (
	Created  Kind = "created"
	Modified Kind = "modified"
	Deleted  Kind = "deleted"
	Moved    Kind = "moved"
	// Closed is part of the vocabulary but fsnotify never reports it.
	Closed Kind = "closed"
)

// Kinds lists every kind the router knows how to handle.
var Kinds = []Kind{Created, Modified, Deleted, Moved, Closed}

// String returns the lower-case kind name used as the analysis index key.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Event is a single filesystem change observed by a watch.
type Event struct {
	Kind Kind
	// Path is the absolute source path of the change.
	Path string
	// DestPath is set for moves when the destination is known.
	DestPath string
	IsDir    bool
}

// FromFsnotify converts an fsnotify event. It returns false for events that
// carry no operation lograt reports.
//
// When several operation bits are set the most significant one wins:
// Remove, Rename, Create, Write, Chmod. Chmod is reported as a modification.
func FromFsnotify(event fsnotify.Event) (Event, bool) {
	var kind Kind
	switch {
	case event.Has(fsnotify.Remove):
		kind = Deleted
	case event.Has(fsnotify.Rename):
		kind = Moved
	case event.Has(fsnotify.Create):
		kind = Created
	case event.Has(fsnotify.Write):
		kind = Modified
	case event.Has(fsnotify.Chmod):
		kind = Modified
	default:
		return Event{}, false
	}

	return Event{
		Kind:  kind,
		Path:  event.Name,
		IsDir: isDir(kind, event.Name),
	}, true
}

func isDir(kind Kind, path string) bool {
	// The path is gone for deletes and moves.
	if kind == Deleted || kind == Moved {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
