// Package photon implements the static balanced kd-tree used by VCM's
// merging pass and the Photon type it stores. Grounded entirely on
// original_source/include/dort/kd_tree.hpp/.cpp and photon_map.hpp/.cpp
// — the teacher has no photon mapping of any kind.
package photon

import (
	"sort"

	"github.com/lumenforge/lumen/pkg/core"
)

// node mirrors kd_tree.hpp's bit-packed Node: splitAxis==3 marks a leaf
// (no right child), matching the C++ sentinel convention.
type node struct {
	splitPos   float64
	splitAxis  uint8
	rightChild uint32 // noRight if this node has no right subtree
}

const noRight = ^uint32(0)
const leafAxis = 3

// KdTree is a static, balanced kd-tree over elements with a 3-D
// position, built once and queried many times via Lookup's
// radius-bounded range search. E is typically photon.Photon but the
// tree is generic over any positioned element.
type KdTree[E any] struct {
	nodes    []node
	elements []E
	point    func(E) core.Vec3
}

// Build constructs a balanced kd-tree over elems. point extracts the
// 3-D position of an element. Splits at each node are chosen along the
// bounding box's longest axis, matching kd_tree.cpp's build_node.
func Build[E any](elems []E, point func(E) core.Vec3) *KdTree[E] {
	t := &KdTree[E]{
		elements: elems,
		point:    point,
	}
	if len(elems) == 0 {
		return t
	}
	t.nodes = make([]node, 0, len(elems))
	t.buildNode(0, len(elems))
	return t
}

func (t *KdTree[E]) buildNode(begin, end int) {
	if begin+1 == end {
		t.nodes = append(t.nodes, node{splitAxis: leafAxis, rightChild: noRight})
		return
	}

	bounds := core.EmptyBox()
	for i := begin; i < end; i++ {
		bounds = bounds.UnionPoint(t.point(t.elements[i]))
	}
	axis := bounds.LongestAxis()
	mid := begin + (end-begin+1)/2 + 1

	// Full sort stands in for the C++ original's std::nth_element
	// partial selection (Go's stdlib has no partial-select primitive);
	// it yields the same pivot and halves, with an O(n log n) rather than
	// an O(n) per-level partition. The split leans left: (n+1)/2 elements
	// go to the left subtree and the remaining n-(n+1)/2-1 to the right.
	sub := t.elements[begin:end]
	sort.Slice(sub, func(i, j int) bool {
		return axisOf(t.point(sub[i]), axis) < axisOf(t.point(sub[j]), axis)
	})
	k := mid - begin
	pivot := sub[k-1]
	copy(sub[1:k], sub[0:k-1])
	sub[0] = pivot

	splitPos := axisOf(t.point(t.elements[begin]), axis)
	rightChild := noRight
	if mid < end {
		rightChild = uint32(mid)
	}
	t.nodes = append(t.nodes, node{splitPos: splitPos, splitAxis: uint8(axis), rightChild: rightChild})
	t.buildNode(begin+1, mid)
	if mid < end {
		t.buildNode(mid, end)
	}
}

func axisOf(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Lookup visits every element within radiusSquare of p, in no
// particular order. callback receives the element, its squared
// distance to p, and the current search radius squared; it returns a
// (possibly shrunk) radius squared that narrows the remainder of the
// search, matching kd_tree.cpp's shrinking-radius convention (used by
// k-nearest-style callers; a plain radius-bounded query just returns
// radiusSquare unchanged).
func (t *KdTree[E]) Lookup(p core.Vec3, radiusSquare float64, callback func(e E, distSquare, radiusSquare float64) float64) {
	if len(t.elements) == 0 {
		return
	}

	var stack [64]uint32
	top := 0
	nodeIdx := uint32(0)

	for {
		n := t.nodes[nodeIdx]
		elem := t.elements[nodeIdx]

		distSquare := p.Sub(t.point(elem)).LengthSquared()
		if distSquare <= radiusSquare {
			radiusSquare = callback(elem, distSquare, radiusSquare)
		}

		descended := false
		if n.splitAxis != leafAxis {
			leftIdx := nodeIdx + 1
			rightIdx := n.rightChild
			axisVal := axisOf(p, int(n.splitAxis))
			splitDistSquare := (axisVal - n.splitPos) * (axisVal - n.splitPos)

			if axisVal < n.splitPos {
				if rightIdx != noRight && splitDistSquare < radiusSquare {
					stack[top] = rightIdx
					top++
				}
				nodeIdx = leftIdx
				descended = true
			} else {
				if splitDistSquare < radiusSquare {
					stack[top] = leftIdx
					top++
				}
				if rightIdx != noRight {
					nodeIdx = rightIdx
					descended = true
				}
			}
		}

		if descended {
			continue
		}
		if top == 0 {
			break
		}
		top--
		nodeIdx = stack[top]
	}
}
