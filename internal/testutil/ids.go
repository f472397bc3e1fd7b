package testutil

import (
	"fmt"
	"sync"
)

// RevisionIDs hands out stable, UUIDv7-shaped revision ids so stored
// snapshots and their listings can be compared byte for byte.
//
// The first call to Next returns "00000000-0000-7000-8000-000000000001".
// Safe for concurrent use.
type RevisionIDs struct {
	mu sync.Mutex
	n  int64
}

func NewRevisionIDs() *RevisionIDs {
	return &RevisionIDs{}
}

// Next returns the next id. Ids sort in issue order.
func (r *RevisionIDs) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", r.n)
}

// Reset restarts the sequence, so a test can replay the same saves.
func (r *RevisionIDs) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n = 0
}
