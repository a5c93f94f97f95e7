//go:build !race

package webauth

// Work factor 12 keeps brute force expensive while bounding login latency.
func passwordHashCost() int {
	return 12
}
