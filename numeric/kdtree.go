package numeric

import (
	"math"
	"sort"
)

// kdNode is one node of a 2-D KD-tree over Points, split alternately
// on R and C.
type kdNode struct {
	point Point
	index int
	left, right *kdNode
	axis int // 0 = split on R, 1 = split on C
}

// KDTree is a simple 2-D spatial index used for mutual-nearest-
// neighbor queries between transformed read points and catalog
// detections.
type KDTree struct {
	root *kdNode
	points []Point
}

// NewKDTree builds a balanced KD-tree over points. The tree retains
// the original indices so queries can be related back to the input
// slice.
func NewKDTree(points []Point) *KDTree {
	items := make([]kdItem, len(points))
	for i, p := range points {
		items[i] = kdItem{point: p, index: i}
	}
	return &KDTree{root: buildKD(items, 0), points: points}
}

type kdItem struct {
	point Point
	index int
}

func buildKD(items []kdItem, depth int) *kdNode {
	if len(items) == 0 {
		return nil
	}
	axis := depth % 2
	sort.Slice(items, func(i, j int) bool {
		if axis == 0 {
			return items[i].point.R < items[j].point.R
		}
		return items[i].point.C < items[j].point.C
	})
	mid := len(items) / 2
	node := &kdNode{point: items[mid].point, index: items[mid].index, axis: axis}
	node.left = buildKD(items[:mid], depth+1)
	node.right = buildKD(items[mid+1:], depth+1)
	return node
}

// Nearest returns the index (into the slice passed to NewKDTree) and
// squared Euclidean distance of the point nearest to q. ok is false
// for an empty tree.
func (t *KDTree) Nearest(q Point) (index int, distSq float64, ok bool) {
	if t.root == nil {
		return -1, 0, false
	}
	best := -1
	bestDist := -1.0
	var visit func(n *kdNode)
	visit = func(n *kdNode) {
		if n == nil {
			return
		}
		d := sqDist(n.point, q)
		if bestDist < 0 || d < bestDist {
			bestDist, best = d, n.index
		}
		var diff, near, far float64
		var nearNode, farNode *kdNode
		if n.axis == 0 {
			diff = q.R - n.point.R
		} else {
			diff = q.C - n.point.C
		}
		if diff < 0 {
			nearNode, farNode = n.left, n.right
		} else {
			nearNode, farNode = n.right, n.left
		}
		visit(nearNode)
		near, far = diff*diff, bestDist
		if near < far || bestDist < 0 {
			visit(farNode)
		}
	}
	visit(t.root)
	return best, bestDist, true
}

func sqDist(a, b Point) float64 {
	dr := a.R - b.R
	dc := a.C - b.C
	return dr*dr + dc*dc
}

// NNResult is the nearest neighbor of one query point within a target
// set.
type NNResult struct {
	Index int // index into the query set, for convenience
	NearestB int // index into the target set b; -1 if b is empty
	Dist float64
}

// KDTreeNN returns, for every point in a, the index of its nearest
// neighbor in b under Euclidean distance.
func KDTreeNN(a, b []Point) []NNResult {
	results := make([]NNResult, len(a))
	if len(b) == 0 {
		for i := range results {
			results[i] = NNResult{Index: i, NearestB: -1, Dist: 0}
		}
		return results
	}
	tree := NewKDTree(b)
	for i, pt := range a {
		idx, distSq, _ := tree.Nearest(pt)
		results[i] = NNResult{Index: i, NearestB: idx, Dist: math.Sqrt(distSq)}
	}
	return results
}
