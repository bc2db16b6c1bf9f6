package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRoundID parses a round id from a path or query value
func ParseRoundID(s string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid round id %q", s)
	}
	return uint32(id), nil
}

// ParseTicketCount parses a positive ticket count
func ParseTicketCount(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid ticket count %q", s)
	}
	return uint32(n), nil
}

// IntOrDefault parses s as a non-negative int, returning def when s is empty or invalid
func IntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
