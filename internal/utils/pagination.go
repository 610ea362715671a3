// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageBounds returns the [start, end) slice bounds for the 1-based page
// of size pageSize over n items. page < 1 is clamped to the first page;
// pageSize < 1 selects everything. A page past the end yields an empty
// range at n.
func PageBounds(n, page, pageSize int) (int, int) {
	if pageSize < 1 {
		return 0, n
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > n {
		return n, n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}
