package batcher

// ManagerOption is a functional option used to configure a Manager during construction.
type ManagerOption func(*batcherManager)

// WithComparator sets a comparator used to re-sort the element list before
// the merge scan. Without one, the manager preserves the input order.
//
// Parameters:
//   - cmp: the ordering comparator
//
// Returns:
//   - ManagerOption: a function that sets the comparator for this manager
func WithComparator(cmp Comparator) ManagerOption {
	return func(m *batcherManager) {
		m.comparator = cmp
	}
}

// WithCanBatch replaces the default compatibility predicate (identical
// material and geometry identity).
//
// Parameters:
//   - fn: the compatibility predicate
//
// Returns:
//   - ManagerOption: a function that sets the predicate for this manager
func WithCanBatch(fn CanBatch) ManagerOption {
	return func(m *batcherManager) {
		m.canBatch = fn
	}
}

// WithPerformBatch replaces the default merge action (append to the member list).
//
// Parameters:
//   - fn: the merge action
//
// Returns:
//   - ManagerOption: a function that sets the merge action for this manager
func WithPerformBatch(fn PerformBatch) ManagerOption {
	return func(m *batcherManager) {
		m.performBatch = fn
	}
}
