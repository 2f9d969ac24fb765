// Package queue provides fixed-capacity containers whose serialized form is
// small enough to live in a size-capped checkpoint.
//
// Container is the indexable slot storage; Ring is a bounded deque on top of
// it. Capacity is chosen once at construction and never grows:
//
//   - PushBack / PushFront evict on overflow (oldest first for PushBack)
//   - TryPushBack / TryPushFront fail with ErrFull instead
//   - TryPopFront / Front / Back fail with ErrEmpty on an empty ring
//
// A Ring marshals to a JSON array in logical order. Restoring an array longer
// than the ring's capacity fails with ErrTooLarge; a checkpoint is never
// truncated silently on the way back in.
package queue
