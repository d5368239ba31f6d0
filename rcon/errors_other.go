//go:build !unix && !windows

package rcon

func isRefused(err error) bool {
	return false
}

func isReset(err error) bool {
	return false
}
