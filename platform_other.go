//go:build !linux || !amd64

package vtx

import "fmt"

// Supported returns false on platforms other than linux/amd64.
func Supported() (bool, error) {
	return false, fmt.Errorf("vtx: not supported on this platform")
}
