package binary

import (
	"os/exec"
)

// Available reports whether a binary can be resolved on the system PATH,
// returning its location.
func Available(binName string) (string, bool) {
	path, err := exec.LookPath(binName)

	return path, err == nil
}
