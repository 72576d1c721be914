// Package bvh implements a generic bounding volume hierarchy over any
// core.Boundable element type (spec.md §4.1). It is used both to group the
// triangles of a mesh and to aggregate primitives in a scene.
package bvh

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/lumenforge/lumen/pkg/core"
)

// SplitMethod selects how an internal node's elements are partitioned.
type SplitMethod int

const (
	SplitMiddle SplitMethod = iota
	SplitSAH
)

// Options controls leaf size, split strategy, and the parallel/serial build
// cutover (spec.md §4.1: "parallel Phase 1/Phase 2 construction").
type Options struct {
	LeafSize            int // preferred leaf size once further splitting stops paying off
	MaxLeafSize         int // hard cap when a split degenerates and must fall back to a leaf
	SplitMethod         SplitMethod
	SAHBucketCount      int
	MinElemsPerJob      int // Phase 1: elements per bounds-reduction job
	ParallelThreshold   int // Phase 2: element count below which a subtree builds serially
}

func DefaultOptions() Options {
	return Options{
		LeafSize:          4,
		MaxLeafSize:       16,
		SplitMethod:       SplitSAH,
		SAHBucketCount:    12,
		MinElemsPerJob:    5000,
		ParallelThreshold: 50000,
	}
}

const (
	sahTraversalCost   = 1.0
	sahIntersectionCost = 2.0
)

// linearNode is the flattened node record (spec.md §4.1's "bounds/axis/
// leaf-offset-count or left-child-index"). Internal nodes store the index
// of their left child; the right child always lives at leftChild+1 — both
// indices are reserved together by the atomic node counter at split time,
// so a subtree built on one goroutine and its sibling built on another
// still land at known, non-overlapping positions (see nodeStore).
type linearNode struct {
	Bounds       core.Box
	OffsetOrLeft int32
	Count        uint16 // 0 for internal nodes
	Axis         uint8
}

// nodeStore is the growable node array backing the build: an atomic index
// counter hands out slots, and a RWMutex guards the occasional underlying
// array growth — readers/writers of already-allocated slots only need the
// read lock, since distinct indices never alias. Grounded on
// original_source/include/dort/bvh.hpp's BuildCtx (atomic free_linear_idx +
// shared_timed_mutex linear_mutex over a growable linear_nodes vector).
type nodeStore struct {
	mu    sync.RWMutex
	nodes []linearNode
	next  int64
}

func newNodeStore(sizeHint int) *nodeStore {
	if sizeHint < 1 {
		sizeHint = 1
	}
	return &nodeStore{nodes: make([]linearNode, sizeHint), next: 1}
}

// reservePair hands out two adjacent indices for a node's two children.
func (s *nodeStore) reservePair() int32 {
	idx := atomic.AddInt64(&s.next, 2) - 2
	return int32(idx)
}

func (s *nodeStore) write(idx int32, n linearNode) {
	s.mu.RLock()
	if int(idx) < len(s.nodes) {
		s.nodes[idx] = n
		s.mu.RUnlock()
		return
	}
	s.mu.RUnlock()

	s.mu.Lock()
	if int(idx) >= len(s.nodes) {
		grown := make([]linearNode, idx+1)
		copy(grown, s.nodes)
		s.nodes = grown
	}
	s.nodes[idx] = n
	s.mu.Unlock()
}

func (s *nodeStore) finish() []linearNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := atomic.LoadInt64(&s.next)
	return s.nodes[:n:n]
}

// BVH is a bounding volume hierarchy over elements of type T. The zero value
// is not usable; construct with Build.
type BVH[T core.Boundable] struct {
	nodes []linearNode
	elems []T // reordered into leaf-contiguous order during Build
}

func component(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

type elemInfo struct {
	index    int
	bounds   core.Box
	centroid core.Vec3
}

type buildCtx[T core.Boundable] struct {
	elems   []T // caller's elements, indexed by elemInfo.index
	infos   []elemInfo
	ordered []T // output in leaf-contiguous order
	store   *nodeStore
	opts    Options
}

// Build constructs a BVH over elements using opts; if opts.LeafSize is not
// positive, opts is replaced entirely by DefaultOptions(). Phase 1
// computes per-element bounds/centroids in parallel chunks; Phase 2 builds
// the tree top-down, forking a goroutine per side while a subtree is larger
// than opts.ParallelThreshold and falling back to serial recursion below it.
func Build[T core.Boundable](elements []T, opts Options) *BVH[T] {
	if opts.LeafSize <= 0 {
		opts = DefaultOptions()
	}
	if len(elements) == 0 {
		return &BVH[T]{}
	}

	infos, rootBounds, rootCentroid := computeElemInfos(elements, opts)

	ctx := &buildCtx[T]{
		elems:   elements,
		infos:   infos,
		ordered: make([]T, len(elements)),
		store:   newNodeStore(len(elements)/opts.LeafSize + 1),
		opts:    opts,
	}

	buildNode(ctx, 0, len(elements), rootBounds, rootCentroid, 0, true)

	return &BVH[T]{nodes: ctx.store.finish(), elems: ctx.ordered}
}

func computeElemInfos[T core.Boundable](elements []T, opts Options) ([]elemInfo, core.Box, core.Box) {
	n := len(elements)
	jobs := n / opts.MinElemsPerJob
	if jobs > runtime.GOMAXPROCS(0) {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs < 1 {
		jobs = 1
	}

	infos := make([]elemInfo, n)
	jobBounds := make([]core.Box, jobs)
	jobCentroidBounds := make([]core.Box, jobs)

	var g errgroup.Group
	for j := 0; j < jobs; j++ {
		j := j
		g.Go(func() error {
			begin := j * n / jobs
			end := (j + 1) * n / jobs
			b, cb := core.EmptyBox(), core.EmptyBox()
			for i := begin; i < end; i++ {
				eb := elements[i].Bounds()
				c := eb.Center()
				infos[i] = elemInfo{index: i, bounds: eb, centroid: c}
				b = b.Union(eb)
				cb = cb.UnionPoint(c)
			}
			jobBounds[j] = b
			jobCentroidBounds[j] = cb
			return nil
		})
	}
	_ = g.Wait() // worker funcs above never return an error

	rootBounds, rootCentroid := core.EmptyBox(), core.EmptyBox()
	for j := 0; j < jobs; j++ {
		rootBounds = rootBounds.Union(jobBounds[j])
		rootCentroid = rootCentroid.Union(jobCentroidBounds[j])
	}
	return infos, rootBounds, rootCentroid
}

func buildNode[T core.Boundable](ctx *buildCtx[T], begin, end int, bounds, centroidBounds core.Box, linearIdx int32, parallel bool) {
	n := end - begin
	makeLeaf := n <= ctx.opts.LeafSize
	axis := 0
	if !makeLeaf {
		axis = centroidBounds.LongestAxis()
	}

	var mid int
	var leftBounds, leftCentroid, rightBounds, rightCentroid core.Box
	if !makeLeaf {
		switch ctx.opts.SplitMethod {
		case SplitSAH:
			mid, leftBounds, leftCentroid, rightBounds, rightCentroid = splitSAH(ctx, begin, end, axis, bounds, centroidBounds)
		default:
			mid, leftBounds, leftCentroid, rightBounds, rightCentroid = splitMiddle(ctx, begin, end, axis, centroidBounds)
		}
		if mid <= begin || mid >= end {
			// Degenerate split (e.g. all centroids coincide on this axis):
			// any non-empty partition terminates recursion correctly, so
			// fall back to a plain index split rather than leaving a
			// leaf larger than MaxLeafSize.
			if n <= ctx.opts.MaxLeafSize {
				makeLeaf = true
			} else {
				mid = begin + n/2
				leftBounds, leftCentroid = rangeBounds(ctx, begin, mid)
				rightBounds, rightCentroid = rangeBounds(ctx, mid, end)
			}
		}
	}

	if makeLeaf {
		for i := begin; i < end; i++ {
			ctx.ordered[i] = ctx.elems[ctx.infos[i].index]
		}
		ctx.store.write(linearIdx, linearNode{Bounds: bounds, OffsetOrLeft: int32(begin), Count: uint16(n), Axis: uint8(axis)})
		return
	}

	left := ctx.store.reservePair()
	right := left + 1
	ctx.store.write(linearIdx, linearNode{Bounds: bounds, OffsetOrLeft: left, Count: 0, Axis: uint8(axis)})

	if parallel && n > ctx.opts.ParallelThreshold {
		var g errgroup.Group
		g.Go(func() error {
			buildNode(ctx, begin, mid, leftBounds, leftCentroid, left, true)
			return nil
		})
		g.Go(func() error {
			buildNode(ctx, mid, end, rightBounds, rightCentroid, right, true)
			return nil
		})
		_ = g.Wait()
	} else {
		buildNode(ctx, begin, mid, leftBounds, leftCentroid, left, false)
		buildNode(ctx, mid, end, rightBounds, rightCentroid, right, false)
	}
}

func rangeBounds[T core.Boundable](ctx *buildCtx[T], begin, end int) (core.Box, core.Box) {
	b, cb := core.EmptyBox(), core.EmptyBox()
	for i := begin; i < end; i++ {
		b = b.Union(ctx.infos[i].bounds)
		cb = cb.UnionPoint(ctx.infos[i].centroid)
	}
	return b, cb
}

// partitionBy reorders infos[begin:end] in place so every element for which
// keep returns true precedes every element for which it returns false,
// returning the boundary index.
func partitionBy(infos []elemInfo, begin, end int, keep func(elemInfo) bool) int {
	i, j := begin, end-1
	for i <= j {
		if keep(infos[i]) {
			i++
		} else if !keep(infos[j]) {
			j--
		} else {
			infos[i], infos[j] = infos[j], infos[i]
			i++
			j--
		}
	}
	return i
}

func splitMiddle[T core.Boundable](ctx *buildCtx[T], begin, end, axis int, centroidBounds core.Box) (int, core.Box, core.Box, core.Box, core.Box) {
	separator := component(centroidBounds.Center(), axis)
	mid := partitionBy(ctx.infos, begin, end, func(e elemInfo) bool {
		return component(e.centroid, axis) < separator
	})
	if mid <= begin || mid >= end {
		return mid, core.Box{}, core.Box{}, core.Box{}, core.Box{}
	}
	lb, lcb := rangeBounds(ctx, begin, mid)
	rb, rcb := rangeBounds(ctx, mid, end)
	return mid, lb, lcb, rb, rcb
}

type sahBucket struct {
	count  int
	bounds core.Box
}

// splitSAH bins elements by centroid into opts.SAHBucketCount buckets along
// axis and picks the partition minimizing the standard surface-area cost
// estimate (spec.md §4.1), falling back to Middle if the axis has zero
// centroid extent or the parent box has zero surface area. If every SAH
// bucket split is worse than a flat leaf it returns a degenerate split, and
// buildNode then makes a leaf (or an index split above MaxLeafSize).
// Grounded on original_source/src/dort/bvh.cpp's split_sah/sah_split_cost.
func splitSAH[T core.Boundable](ctx *buildCtx[T], begin, end, axis int, bounds, centroidBounds core.Box) (int, core.Box, core.Box, core.Box, core.Box) {
	lo, hi := centroidBounds.Axis(axis)
	if hi-lo < 1e-12 {
		return splitMiddle(ctx, begin, end, axis, centroidBounds)
	}

	nBuckets := ctx.opts.SAHBucketCount
	if nBuckets < 2 {
		nBuckets = 2
	}
	buckets := make([]sahBucket, nBuckets)
	for i := range buckets {
		buckets[i].bounds = core.EmptyBox()
	}
	bucketOf := func(centroid float64) int {
		b := int(float64(nBuckets) * (centroid - lo) / (hi - lo))
		if b < 0 {
			b = 0
		}
		if b >= nBuckets {
			b = nBuckets - 1
		}
		return b
	}
	for i := begin; i < end; i++ {
		b := bucketOf(component(ctx.infos[i].centroid, axis))
		buckets[b].count++
		buckets[b].bounds = buckets[b].bounds.Union(ctx.infos[i].bounds)
	}

	parentArea := bounds.SurfaceArea()
	if parentArea <= 0 {
		return splitMiddle(ctx, begin, end, axis, centroidBounds)
	}

	bestCost := sahIntersectionCost * float64(end-begin)
	bestSplit := -1
	for i := 0; i < nBuckets-1; i++ {
		lb, lCount := core.EmptyBox(), 0
		for k := 0; k <= i; k++ {
			lb = lb.Union(buckets[k].bounds)
			lCount += buckets[k].count
		}
		rb, rCount := core.EmptyBox(), 0
		for k := i + 1; k < nBuckets; k++ {
			rb = rb.Union(buckets[k].bounds)
			rCount += buckets[k].count
		}
		if lCount == 0 || rCount == 0 {
			continue
		}
		cost := sahTraversalCost + sahIntersectionCost*
			(float64(lCount)*lb.SurfaceArea()+float64(rCount)*rb.SurfaceArea())/parentArea
		if cost < bestCost {
			bestCost = cost
			bestSplit = i
		}
	}

	if bestSplit < 0 {
		// Every split costs more than a leaf: signal the caller to prefer
		// one by returning a degenerate mid (begin), which makeLeaf's
		// MaxLeafSize check then resolves.
		return begin, core.Box{}, core.Box{}, core.Box{}, core.Box{}
	}

	separator := lo + (hi-lo)*float64(bestSplit+1)/float64(nBuckets)
	mid := partitionBy(ctx.infos, begin, end, func(e elemInfo) bool {
		return component(e.centroid, axis) < separator
	})
	if mid <= begin || mid >= end {
		return mid, core.Box{}, core.Box{}, core.Box{}, core.Box{}
	}
	lb, lcb := rangeBounds(ctx, begin, mid)
	rb, rcb := rangeBounds(ctx, mid, end)
	return mid, lb, lcb, rb, rcb
}

// Bounds returns the box of the whole hierarchy (EmptyBox for an empty BVH).
func (b *BVH[T]) Bounds() core.Box {
	if len(b.nodes) == 0 {
		return core.EmptyBox()
	}
	return b.nodes[0].Bounds
}

func (b *BVH[T]) Empty() bool { return len(b.nodes) == 0 }

// TestFunc tests one element against ray (whose TMax is already the
// closest-so-far distance) and reports the new hit distance if closer.
type TestFunc[T core.Boundable] func(elem T, ray core.Ray) (tHit float64, ok bool)

// Intersect walks the hierarchy with a 64-entry explicit stack (spec.md
// §4.1), visiting the near child first by the ray direction's sign on each
// node's split axis, and returns the closest element test reports a hit
// for, if any.
func (b *BVH[T]) Intersect(ray core.Ray, test TestFunc[T]) (elem T, tHit float64, ok bool) {
	if len(b.nodes) == 0 {
		return elem, 0, false
	}
	dirNeg := [3]bool{ray.Direction.X < 0, ray.Direction.Y < 0, ray.Direction.Z < 0}

	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++

	bestT := ray.TMax
	found := false

	for sp > 0 {
		sp--
		idx := stack[sp]
		node := &b.nodes[idx]
		if !node.Bounds.Hit(ray, ray.TMin, bestT) {
			continue
		}
		if node.Count > 0 {
			start := int(node.OffsetOrLeft)
			for i := start; i < start+int(node.Count); i++ {
				r := ray
				r.TMax = bestT
				if t, hit := test(b.elems[i], r); hit && t < bestT {
					bestT = t
					elem = b.elems[i]
					found = true
				}
			}
			continue
		}
		left := node.OffsetOrLeft
		right := left + 1
		if dirNeg[node.Axis] {
			stack[sp] = left
			sp++
			stack[sp] = right
			sp++
		} else {
			stack[sp] = right
			sp++
			stack[sp] = left
			sp++
		}
	}
	return elem, bestT, found
}

// PredFunc is an any-hit element test for shadow-ray style queries.
type PredFunc[T core.Boundable] func(elem T, ray core.Ray) bool

// IntersectP reports whether any element blocks ray, stopping at the first
// accepted hit (no ordering requirement since the result is boolean).
func (b *BVH[T]) IntersectP(ray core.Ray, test PredFunc[T]) bool {
	if len(b.nodes) == 0 {
		return false
	}

	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		idx := stack[sp]
		node := &b.nodes[idx]
		if !node.Bounds.Hit(ray, ray.TMin, ray.TMax) {
			continue
		}
		if node.Count > 0 {
			start := int(node.OffsetOrLeft)
			for i := start; i < start+int(node.Count); i++ {
				if test(b.elems[i], ray) {
					return true
				}
			}
			continue
		}
		stack[sp] = node.OffsetOrLeft
		sp++
		stack[sp] = node.OffsetOrLeft + 1
		sp++
	}
	return false
}
