//go:build unix

package adapter

import (
	"os/exec"
	"syscall"
)

// killProcessGroup makes cmd the leader of its own process group and cancels
// it by signalling the whole group, so test binaries spawned by the command
// die with it and release the output pipes.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}

		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
