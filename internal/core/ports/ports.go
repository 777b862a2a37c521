package ports

// BufferID identifies an open source buffer. Workspace buffers use the
// absolute, cleaned file path.
type BufferID string

// Snapshot is an immutable view of a buffer's content at one version.
type Snapshot struct {
	ID      BufferID
	Content []byte
	Version uint64
}

// Disposable releases a subscription. Dispose must be idempotent.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function to Disposable.
type DisposeFunc func()

func (f DisposeFunc) Dispose() {
	if f != nil {
		f()
	}
}

// EditorHandle is a host editor showing one buffer with a caret.
type EditorHandle interface {
	ID() string
	CaretOffset() int
}

// BufferProvider maps editors to buffers and serves buffer content.
// CurrentBuffer must be safe to call from the UI thread.
type BufferProvider interface {
	CurrentBuffer(editor EditorHandle) (BufferID, bool)
	Snapshot(id BufferID) (Snapshot, bool)
}

// EditorSelector reports the focused editor, if any.
type EditorSelector interface {
	SelectedEditor() (EditorHandle, bool)
}

// CaretSource delivers caret-moved notifications for every open editor.
type CaretSource interface {
	AddCaretListener(fn func(EditorHandle)) Disposable
}

// ChangeSource delivers buffer content-change notifications.
type ChangeSource interface {
	AddChangeListener(fn func(BufferID)) Disposable
}

// NodeKind selects the construct NearestEnclosing searches for.
type NodeKind int

const (
	KindVariableBinding NodeKind = iota
)

// SyntaxNode is a node of a parsed buffer.
type SyntaxNode interface {
	Kind() string
	Text() string
	StartOffset() int
	EndOffset() int
}

// SyntaxRoot is a parsed buffer. Nodes obtained from it are valid until Close.
type SyntaxRoot interface {
	Buffer() Snapshot
	ElementAt(offset int) (SyntaxNode, bool)
	Close()
}

// SyntaxProvider parses buffers and navigates their trees.
type SyntaxProvider interface {
	SyntaxTreeOf(id BufferID) (SyntaxRoot, bool)
	NearestEnclosing(node SyntaxNode, kind NodeKind) (SyntaxNode, bool)
}

// TypeDescriptor is an inferred type.
type TypeDescriptor interface {
	DisplayName() string
}

// AnalysisSession is a read-only analysis scope. Release must be called on
// every exit path once the session has been entered.
type AnalysisSession interface {
	InferType(binding SyntaxNode, root SyntaxRoot) (TypeDescriptor, bool, error)
	Release()
}

// TypeBackend evaluates types on demand.
type TypeBackend interface {
	BeginRead() (AnalysisSession, error)
}

// Executor runs work off the UI thread. Submit must not block.
type Executor interface {
	Submit(task func())
}

// UIDispatcher runs closures on the UI thread in submission order.
type UIDispatcher interface {
	InvokeLater(fn func())
}

// StatusBar is the host surface widgets are installed into.
type StatusBar interface {
	UpdateWidget(id string)
}
