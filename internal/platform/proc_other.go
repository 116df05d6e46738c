//go:build unix && !linux

package platform

import (
	"errors"
	"os/exec"
	"syscall"
)

// ConfigureChild places the child in a new process group.
func ConfigureChild(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// Exited always reports false; callers fall back to waiting for the reaper.
func Exited(pid int) bool {
	return false
}

// WaitExited is unsupported here; callers reap first and then signal the
// group, accepting that the group id may already be gone.
func WaitExited(pid int) error {
	return errors.ErrUnsupported
}
