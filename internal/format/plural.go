package format

import "strconv"

// Count returns n followed by word, pluralized with a trailing "s" unless
// n is 1: Count(1, "file") -> "1 file", Count(3, "file") -> "3 files".
func Count(n int, word string) string {
	if n != 1 {
		word += "s"
	}
	return strconv.Itoa(n) + " " + word
}
