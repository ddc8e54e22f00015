package scanner

// Event is a notification delivered by a device session. Exactly one of
// the concrete types below.
type Event interface {
	event()
}

// OpenCompleted reports the outcome of Session.Open.
type OpenCompleted struct {
	Err error
}

// FileTransferred reports a document written into the download directory.
type FileTransferred struct {
	Path string
}

// ScanCompleted reports the end of a scan. Err is nil on success.
type ScanCompleted struct {
	Err error
}

func (OpenCompleted) event()   {}
func (FileTransferred) event() {}
func (ScanCompleted) event()   {}

// Notifier receives session events. Implementations must not block.
type Notifier func(Event)
