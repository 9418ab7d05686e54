package events

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"syscall"
)

// DaemonErrorCode says why the event daemon could not be reached
type DaemonErrorCode int

const (
	ErrSocketNotFound DaemonErrorCode = iota
	ErrSocketPermission
	ErrDaemonNotRunning
	ErrConnectionRefused
)

func (c DaemonErrorCode) String() string {
	switch c {
	case ErrSocketNotFound:
		return "socket not found"
	case ErrSocketPermission:
		return "permission denied"
	case ErrConnectionRefused:
		return "connection refused"
	default:
		return "daemon not running"
	}
}

// DaemonError is a failed connection to the daemon listening on Socket.
// Commands keep working without it; only change notifications are lost.
type DaemonError struct {
	Code   DaemonErrorCode
	Socket string
	Err    error
}

func (e *DaemonError) Error() string {
	return fmt.Sprintf("event daemon at %s: %s. %s", e.Socket, e.Code, e.Hint())
}

func (e *DaemonError) Unwrap() error { return e.Err }

// Hint tells the operator how to get notifications flowing again
func (e *DaemonError) Hint() string {
	switch e.Code {
	case ErrSocketNotFound:
		return "Start it with `go run ./cmd/daemon`, or set daemon.socket (SITEBOOK_DAEMON_SOCKET) to the socket it listens on"
	case ErrSocketPermission:
		return fmt.Sprintf("Check the permissions of %s (chmod 700)", filepath.Dir(e.Socket))
	case ErrConnectionRefused:
		return "A stale socket was left behind. Restart the daemon, it removes the old socket on start"
	default:
		return "Start it with `go run ./cmd/daemon` using the same daemon.socket setting"
	}
}

// ClassifyDaemonError explains err, a failure to reach the daemon on socket
func ClassifyDaemonError(socket string, err error) *DaemonError {
	if err == nil {
		return nil
	}
	var derr *DaemonError
	if errors.As(err, &derr) {
		return derr
	}

	code := ErrDaemonNotRunning
	var errno syscall.Errno
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = ErrSocketNotFound
	case errors.Is(err, fs.ErrPermission):
		code = ErrSocketPermission
	case errors.As(err, &errno) && errno == syscall.ECONNREFUSED:
		code = ErrConnectionRefused
	}
	return &DaemonError{Code: code, Socket: socket, Err: err}
}
