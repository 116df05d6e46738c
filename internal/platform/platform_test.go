package platform_test

import (
	"io"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/programme-lv/catalyst/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollReadable(t *testing.T) {
	idle, err := platform.NewPipe()
	require.NoError(t, err)
	defer idle.Close()
	written, err := platform.NewPipe()
	require.NoError(t, err)
	defer written.Close()
	hungUp, err := platform.NewPipe()
	require.NoError(t, err)
	defer hungUp.Close()

	fds := []int{int(idle.ReadEnd.Fd()), int(written.ReadEnd.Fd()), int(hungUp.ReadEnd.Fd())}

	ready, err := platform.PollReadable(fds, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, ready)

	_, err = written.WriteEnd.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, hungUp.WriteEnd.Close())

	ready, err = platform.PollReadable(fds, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ready)

	ready, err = platform.PollReadable(nil, time.Second)
	require.NoError(t, err)
	assert.Empty(t, ready)
}

func TestPipeCloseTwice(t *testing.T) {
	p, err := platform.NewPipe()
	require.NoError(t, err)
	require.NoError(t, p.WriteEnd.Close())
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}

func TestRedirectChildCombinesStreams(t *testing.T) {
	p, err := platform.NewPipe()
	require.NoError(t, err)
	defer p.Close()

	cmd := exec.Command("/bin/sh", "-c", "echo out; echo err >&2")
	require.NoError(t, platform.RedirectChild(cmd, platform.Stdout, p.WriteEnd))
	require.NoError(t, platform.RedirectChild(cmd, platform.Stderr, p.WriteEnd))
	require.Error(t, platform.RedirectChild(cmd, platform.Stream(7), p.WriteEnd))

	require.NoError(t, cmd.Start())
	require.NoError(t, p.WriteEnd.Close())
	out, err := io.ReadAll(p.ReadEnd)
	require.NoError(t, err)
	require.NoError(t, cmd.Wait())
	assert.Equal(t, "out\nerr\n", string(out))
}

func TestClassifyTermination(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   platform.Termination
	}{
		{name: "zero", script: "exit 0", want: platform.Normal(0)},
		{name: "nonzero", script: "exit 3", want: platform.Normal(3)},
		{name: "abort", script: "ulimit -c 0; kill -ABRT $$", want: platform.Abnormal(syscall.SIGABRT)},
		{name: "segv", script: "ulimit -c 0; kill -SEGV $$", want: platform.Abnormal(syscall.SIGSEGV)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command("/bin/sh", "-c", tt.script)
			_ = cmd.Run()
			assert.Equal(t, tt.want, platform.ClassifyTermination(cmd.ProcessState))
		})
	}

	abrt := platform.Abnormal(syscall.SIGABRT)
	assert.Equal(t, "aborted", abrt.SignalName())
	assert.Equal(t, "SIGABRT", abrt.Short())
	assert.Empty(t, platform.Normal(0).SignalName())
}

func TestKillGroup(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "sleep 5 & wait")
	platform.ConfigureChild(cmd)
	require.NoError(t, cmd.Start())

	require.NoError(t, platform.KillGroup(cmd.Process.Pid))
	_ = cmd.Wait()
	assert.True(t, platform.ClassifyTermination(cmd.ProcessState).Abnormal)
	assert.False(t, platform.Alive(cmd.Process.Pid))

	require.NoError(t, platform.KillGroup(cmd.Process.Pid), "a vanished group is not an error")
	require.Error(t, platform.KillGroup(0))
}
