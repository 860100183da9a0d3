package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"syscall"
)

// ErrRootNotDir is returned at startup when the served root is missing or
// is not a directory.
var ErrRootNotDir = errors.New("root is not a directory")

// BindError reports that the listening socket could not be created. It is
// the only fatal error once the configuration has been loaded.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	switch {
	case errors.Is(e.Err, syscall.EADDRINUSE):
		return fmt.Sprintf("cannot listen on %s: port already in use", e.Addr)
	case errors.Is(e.Err, syscall.EACCES):
		return fmt.Sprintf("cannot listen on %s: permission denied", e.Addr)
	}
	return fmt.Sprintf("cannot listen on %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// httpError maps a filesystem error to a status and plain-text body, using
// the same mapping as http.FileServer: missing files are 404, unreadable
// ones 403, anything else 500.
func httpError(err error) (string, int) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "404 page not found", http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return "403 Forbidden", http.StatusForbidden
	}
	return "500 Internal Server Error", http.StatusInternalServerError
}
