// Package lobby implements the membership directory: the process-wide table
// of identities that are currently online, and the fanout of join/leave
// deltas to every other member.
//
// # Concurrency
//
// Lookups and snapshots share a read lock; Add, Remove and Release take the
// write lock only long enough to mutate the table and collect the fanout
// recipients. Deltas are delivered after the lock is released, in the order
// the mutations committed, so every observer sees one identity's
// join/reconnect/leave sequence in the order it happened.
//
// Delivery is best effort. A member whose outbound sink is closed or full
// simply misses the delta; it is never removed as a side effect, only by its
// own connection teardown.
package lobby
