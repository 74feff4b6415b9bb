package queue

// QueueOption is a functional option used to configure a Queue during construction.
type QueueOption func(*queueImpl)

// WithFrustumCulling enables or disables frustum culling in AddElement.
//
// Parameters:
//   - enabled: true to cull against the camera frustum
//
// Returns:
//   - QueueOption: a function that sets frustum culling for this queue
func WithFrustumCulling(enabled bool) QueueOption {
	return func(q *queueImpl) {
		q.frustumCulling = enabled
	}
}

// WithMaxRenderDistance sets the maximum camera distance beyond which
// elements are culled. Zero disables distance culling.
//
// Parameters:
//   - distance: the maximum render distance
//
// Returns:
//   - QueueOption: a function that sets the max render distance for this queue
func WithMaxRenderDistance(distance float32) QueueOption {
	return func(q *queueImpl) {
		q.maxRenderDistance = distance
	}
}

// WithDistanceSorting enables or disables distance-based ordering. With it
// disabled, buckets sort purely by the stable tie-break chain.
//
// Parameters:
//   - enabled: true to sort by camera distance
//
// Returns:
//   - QueueOption: a function that sets distance sorting for this queue
func WithDistanceSorting(enabled bool) QueueOption {
	return func(q *queueImpl) {
		q.distanceSorting = enabled
	}
}

// WithBatching enables or disables batch construction in Build.
//
// Parameters:
//   - enabled: true to build batches
//
// Returns:
//   - QueueOption: a function that sets batching for this queue
func WithBatching(enabled bool) QueueOption {
	return func(q *queueImpl) {
		q.batching = enabled
	}
}

// WithInstancing enables or disables instanced batches and sets the instance cap.
//
// Parameters:
//   - enabled: true to mark qualifying batches instanced
//   - maxInstances: the maximum member count for an instanced batch
//
// Returns:
//   - QueueOption: a function that sets instancing for this queue
func WithInstancing(enabled bool, maxInstances int) QueueOption {
	return func(q *queueImpl) {
		q.instancing = enabled
		if maxInstances > 0 {
			q.maxInstanceCount = maxInstances
		}
	}
}

// WithMaxBatchSize sets the maximum member count per batch.
//
// Parameters:
//   - size: the maximum batch size
//
// Returns:
//   - QueueOption: a function that sets the max batch size for this queue
func WithMaxBatchSize(size int) QueueOption {
	return func(q *queueImpl) {
		if size > 0 {
			q.maxBatchSize = size
		}
	}
}

// WithBatchStrategy replaces the queue's default adjacent-merge batch builder
// with a custom strategy.
//
// Parameters:
//   - strategy: the batch strategy to use
//
// Returns:
//   - QueueOption: a function that sets the batch strategy for this queue
func WithBatchStrategy(strategy BatchStrategy) QueueOption {
	return func(q *queueImpl) {
		q.strategy = strategy
	}
}
