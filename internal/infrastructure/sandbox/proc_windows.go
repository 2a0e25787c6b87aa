//go:build windows

package sandbox

import "os/exec"

// setProcGroup is a no-op on Windows; exec.CommandContext kills the direct
// child and WaitDelay bounds the remainder.
func setProcGroup(cmd *exec.Cmd) {}

func killTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
