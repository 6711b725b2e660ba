package settlement

// Apply is the optimistic-update primitive: take a snapshot, speculatively
// apply a local change, then attempt the remote write. On failure the
// snapshot is returned unchanged along with the error, so the caller's view
// rolls back to what it was. The core never retries; that is transport
// policy.
func Apply[T any](snapshot T, change func(T) (T, error), persist func(T) error) (T, error) {
	next, err := change(snapshot)
	if err != nil {
		return snapshot, err
	}
	if err := persist(next); err != nil {
		return snapshot, err
	}
	return next, nil
}
