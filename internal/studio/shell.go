// Package studio models the avatar studio's single upload/result slot as a
// state machine.
//
// A new upload always moves the shell to Loading and discards the previous
// result. Every upload is tagged with a monotonic ticket, and a response is
// applied only if its ticket is still the latest one issued, so a slow
// response can never overwrite a newer upload's outcome.
package studio

import (
	"errors"
	"sync"
)

// State is the shell's lifecycle position.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrDownloadNotAllowed is returned when a download is requested before an
// upload has settled.
var ErrDownloadNotAllowed = errors.New("download is only available once generation has finished")

// Image is an encoded image held by the shell.
type Image struct {
	MimeType string
	Data     []byte
}

// Ticket identifies one in-flight upload.
type Ticket uint64

// View is a point-in-time copy of the shell.
type View struct {
	State  State
	Seq    Ticket
	Upload *Image
	Result *Image
	Err    error
}

// Shell holds the current upload and result. The zero value is Idle and
// ready to use.
type Shell struct {
	mu     sync.Mutex
	state  State
	seq    Ticket
	upload *Image
	result *Image
	err    error
}

// Begin replaces the current upload, clears any result or error, and
// returns the ticket the eventual response must present.
func (s *Shell) Begin(upload Image) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.state = Loading
	s.upload = &upload
	s.result = nil
	s.err = nil
	return s.seq
}

// Complete records a successful generation. It reports false, leaving the
// shell untouched, when t is not the latest ticket.
func (s *Shell) Complete(t Ticket, result Image) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.seq || s.state != Loading {
		return false
	}
	s.state = Ready
	s.result = &result
	return true
}

// Fail records a failed generation for ticket t. The result slot stays
// empty; the upload is kept so it can still be exported.
func (s *Shell) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.seq || s.state != Loading {
		return false
	}
	s.state = Failed
	s.err = err
	return true
}

// Snapshot returns a copy of the current state.
func (s *Shell) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{State: s.state, Seq: s.seq, Upload: s.upload, Result: s.result, Err: s.err}
}

// DownloadSource returns the image to composite for download: the
// generated result when Ready, the original upload when Failed.
func (s *Shell) DownloadSource() (Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Ready:
		return *s.result, nil
	case Failed:
		return *s.upload, nil
	default:
		return Image{}, ErrDownloadNotAllowed
	}
}
