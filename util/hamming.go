package util

import "fmt"

// Hamming computes the Hamming distance between two equal-length strings:
// the number of positions at which the corresponding bytes differ. Unlike
// Levenshtein, this does not model indels, which makes it the appropriate
// metric for UMIs and cell barcodes of fixed, known length.
func Hamming(s1, s2 string) int {
	if len(s1) != len(s2) {
		panic(fmt.Sprintf("s1 and s2 must have equal length: '%s', '%s'", s1, s2))
	}
	dist := 0
	for i := 0; i < len(s1); i++ {
		if s1[i] != s2[i] {
			dist++
		}
	}
	return dist
}
