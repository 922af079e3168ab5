// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"sync"
)

// SegmentDeduplicator is an idempotency filter over transcript fragments.
// The provider redelivers realtime webhooks, so every fragment is keyed by
// (start, end, speaker) and only the first delivery is treated as novel.
// Keys never expire: the set is bounded by the length of a single meeting.
type SegmentDeduplicator struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSegmentDeduplicator creates an empty deduplicator.
func NewSegmentDeduplicator() *SegmentDeduplicator {
	return &SegmentDeduplicator{
		seen: make(map[string]struct{}),
	}
}

// IsDuplicate reports whether the exact segment was delivered before, and
// records it if it was not. The first call for a given key returns false;
// every later call with the identical key returns true.
func (d *SegmentDeduplicator) IsDuplicate(start, end float64, speaker string) bool {
	key := fmt.Sprintf("%v:%v:%s", start, end, speaker)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

// Len returns the number of distinct segments seen, for diagnostics.
func (d *SegmentDeduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
