package utils

import "os"

// RunningOnTerminal checks whether stdout is connected to an
// interactive terminal.
func RunningOnTerminal() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
