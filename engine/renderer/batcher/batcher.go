// Package batcher provides a pluggable merge strategy for the render queue:
// an explicit sort with a caller-supplied comparator followed by a linear
// adjacent-merge scan driven by canBatch/performBatch hooks. The queue's
// built-in builder covers the common case; this package exists for pipelines
// that need a custom grouping policy (material-first shadow batching, custom
// LOD buckets) without touching queue internals.
package batcher

import (
	"github.com/forge3d/forge/engine/renderer/queue"
)

// Comparator orders two elements; it must be a strict weak ordering.
type Comparator func(a, b *queue.Element) bool

// CanBatch reports whether two adjacent, already-sorted elements may share a
// batch. It must be a pure predicate: no side effects, evaluated exactly once
// per adjacent pair per build.
type CanBatch func(a, b *queue.Element) bool

// PerformBatch folds an element into the running batch. It may mutate only
// batch-local aggregation state (member list, instance transforms), never the
// source element.
type PerformBatch func(b *queue.Batch, el *queue.Element)

// batcherManager is the unexported implementation of Manager.
type batcherManager struct {
	comparator   Comparator
	canBatch     CanBatch
	performBatch PerformBatch
}

// Manager merges a queue bucket into draw batches. It implements
// queue.BatchStrategy, so it can be installed on a Queue with
// queue.WithBatchStrategy, or invoked directly on a raw element list.
type Manager interface {
	queue.BatchStrategy
}

var _ Manager = &batcherManager{}

// NewManager creates a new Manager with the provided options. Without options
// the manager reproduces the queue's default policy: no re-sort, adjacent
// merge on identical material and geometry identity.
//
// Parameters:
//   - options: a variadic list of options to configure the manager
//
// Returns:
//   - Manager: a new instance of Manager configured with the provided options
func NewManager(options ...ManagerOption) Manager {
	m := &batcherManager{
		canBatch: func(a, b *queue.Element) bool {
			return a.MaterialID() == b.MaterialID() && a.GeometryID() == b.GeometryID()
		},
		performBatch: func(b *queue.Batch, el *queue.Element) {
			b.Elements = append(b.Elements, el)
		},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *batcherManager) BuildBatches(elements []*queue.Element, maxBatchSize int, instancing bool, maxInstances int) []*queue.Batch {
	if len(elements) == 0 {
		return nil
	}
	if maxBatchSize < 1 {
		maxBatchSize = 1
	}

	// Work on a copy: the queue owns the bucket order it built.
	sorted := make([]*queue.Element, len(elements))
	copy(sorted, elements)
	if m.comparator != nil {
		quicksort(sorted, 0, len(sorted)-1, m.comparator)
	}

	batches := make([]*queue.Batch, 0, len(sorted))
	current := newBatch(sorted[0])

	for _, el := range sorted[1:] {
		if len(current.Elements) < maxBatchSize && m.canBatch(current.Elements[len(current.Elements)-1], el) {
			m.performBatch(current, el)
			continue
		}

		finalize(current, instancing, maxInstances)
		batches = append(batches, current)
		current = newBatch(el)
	}

	finalize(current, instancing, maxInstances)
	return append(batches, current)
}

func newBatch(el *queue.Element) *queue.Batch {
	return &queue.Batch{
		Material: el.Material,
		Mesh:     el.Mesh,
		Elements: []*queue.Element{el},
	}
}

func finalize(b *queue.Batch, instancing bool, maxInstances int) {
	if !instancing || len(b.Elements) < 2 || len(b.Elements) > maxInstances {
		return
	}
	b.Instanced = true
	b.Transforms = make([][16]float32, len(b.Elements))
	for i, el := range b.Elements {
		b.Transforms[i] = el.Transform
	}
}

// quicksort sorts elements[lo:hi+1] in place with a median-of-three pivot.
// Insertion sort takes over on small partitions.
func quicksort(elements []*queue.Element, lo, hi int, less Comparator) {
	for hi-lo > 12 {
		p := partition(elements, lo, hi, less)
		// Recurse into the smaller side, loop on the larger, bounding stack depth.
		if p-lo < hi-p {
			quicksort(elements, lo, p-1, less)
			lo = p + 1
		} else {
			quicksort(elements, p+1, hi, less)
			hi = p - 1
		}
	}
	insertionSort(elements, lo, hi, less)
}

func partition(elements []*queue.Element, lo, hi int, less Comparator) int {
	mid := lo + (hi-lo)/2
	medianOfThree(elements, lo, mid, hi, less)
	elements[mid], elements[hi] = elements[hi], elements[mid]

	pivot := elements[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if less(elements[j], pivot) {
			elements[i], elements[j] = elements[j], elements[i]
			i++
		}
	}
	elements[i], elements[hi] = elements[hi], elements[i]
	return i
}

func medianOfThree(elements []*queue.Element, a, b, c int, less Comparator) {
	if less(elements[b], elements[a]) {
		elements[a], elements[b] = elements[b], elements[a]
	}
	if less(elements[c], elements[b]) {
		elements[b], elements[c] = elements[c], elements[b]
		if less(elements[b], elements[a]) {
			elements[a], elements[b] = elements[b], elements[a]
		}
	}
}

func insertionSort(elements []*queue.Element, lo, hi int, less Comparator) {
	for i := lo + 1; i <= hi; i++ {
		for j := i; j > lo && less(elements[j], elements[j-1]); j-- {
			elements[j], elements[j-1] = elements[j-1], elements[j]
		}
	}
}
