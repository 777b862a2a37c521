package workspace

import (
	"sync/atomic"
	"typeinspector/internal/core/ports"

	"github.com/google/uuid"
)

// Editor shows one buffer and owns a caret. The caret offset is a character
// offset into the buffer.
type Editor struct {
	id     string
	buffer ports.BufferID
	caret  atomic.Int64
}

func newEditor(buffer ports.BufferID) *Editor {
	return &Editor{id: uuid.NewString(), buffer: buffer}
}

func (e *Editor) ID() string { return e.id }

func (e *Editor) Buffer() ports.BufferID { return e.buffer }

func (e *Editor) CaretOffset() int { return int(e.caret.Load()) }
