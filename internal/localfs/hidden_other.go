//go:build !windows

package localfs

func hasHiddenAttribute(string) bool { return false }
