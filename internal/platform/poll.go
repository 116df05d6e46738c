package platform

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// ErrInterrupted means the wait was interrupted by a signal before any
// descriptor became ready. Callers retry.
var ErrInterrupted = errors.New("readiness wait interrupted")

const readyEvents = unix.POLLIN | unix.POLLHUP | unix.POLLERR | unix.POLLNVAL

// PollReadable waits until at least one of fds is readable, hung up or in
// error, or until timeout elapses. It returns the indexes (into fds) of the
// ready descriptors. A negative timeout waits indefinitely.
func PollReadable(fds []int, timeout time.Duration) ([]int, error) {
	if len(fds) == 0 {
		return nil, nil
	}
	pfds := make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		pfds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}

	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
	}
	n, err := unix.Poll(pfds, ms)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, ErrInterrupted
		}
		return nil, fmt.Errorf("poll failed: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	ready := make([]int, 0, n)
	for i, p := range pfds {
		if p.Revents&readyEvents != 0 {
			ready = append(ready, i)
		}
	}
	return ready, nil
}
