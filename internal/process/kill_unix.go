//go:build !windows

package process

import "syscall"

// KillTree kills the browser process and every child it spawned by sending
// SIGKILL to its process group. Non-positive PIDs are ignored because -0 and
// -1 address the caller's own group and every process.
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		// Chrome may run in our own group; fall back to the single process.
		if err2 := syscall.Kill(pid, syscall.SIGKILL); err2 != nil {
			return err
		}
	}
	return nil
}
