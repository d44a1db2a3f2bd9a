package atomics

import "sync/atomic"

// Raises target to candidate if candidate is larger. Lock free, retries only while
// another writer is raising the same value.
func StoreMax(target *atomic.Uint64, candidate uint64) (raised bool) {
	for {
		current := target.Load()
		if candidate <= current {
			return
		}
		if target.CompareAndSwap(current, candidate) {
			raised = true
			return
		}
	}
}
