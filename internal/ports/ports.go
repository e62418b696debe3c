// Package ports finds free loopback ports for pane processes.
package ports

import (
	"fmt"
	"net"
)

// Available reports whether a port can be bound exclusively on loopback.
// The listener is released immediately, so the answer is best effort: another
// process may grab the port between this probe and the real bind.
func Available(port int) bool {
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return false
	}
	l.Close()
	return true
}

// Assign maps each declared port to a free port, starting at the declared
// number and incrementing until a candidate is neither claimed, already
// assigned in this call, nor bound by another process. Candidates chosen
// earlier in the call are never handed out twice.
func Assign(declared []int, claimed map[int]bool) map[int]int {
	assigned := make(map[int]int, len(declared))
	inUse := make(map[int]bool, len(claimed)+len(declared))
	for p := range claimed {
		inUse[p] = true
	}

	for _, port := range declared {
		candidate := port
		for inUse[candidate] || !Available(candidate) {
			candidate++
		}
		assigned[port] = candidate
		inUse[candidate] = true
	}

	return assigned
}
