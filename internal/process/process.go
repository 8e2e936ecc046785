// Package process terminates the browser process tree left behind by a launcher.
package process

import "errors"

// ErrInvalidPID is returned for PIDs that must never be signalled.
var ErrInvalidPID = errors.New("invalid process id")
