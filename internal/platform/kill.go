package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// KillGroup sends SIGKILL to the process group led by pid. A group that no
// longer exists is not an error.
func KillGroup(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid process group %d", pid)
	}
	err := unix.Kill(-pid, unix.SIGKILL)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("failed to kill process group %d: %w", pid, err)
	}
	return nil
}

// Alive reports whether a process with the given pid exists.
func Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
