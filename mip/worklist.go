package mip

import (
	"container/heap"

	"q.log/tableau/model"
)

// node is an open subproblem: the parent's constraints plus one bound.
type node struct {
	id     int
	parent int
	depth  int

	// branchVar is the variable bounded by the last added row, -1 at the root.
	branchVar int

	// bound is the parent's relaxed objective in the maximization convention.
	bound float64

	model *model.Model
}

type worklist interface {
	push(*node)
	pop() *node
	len() int
	// best returns the largest bound among the open nodes.
	best() float64
}

func newWorklist(s Search) worklist {
	if s == BestBound {
		return &boundQueue{}
	}
	return &stack{}
}

type stack []*node

func (s *stack) push(n *node) { *s = append(*s, n) }

func (s *stack) pop() *node {
	old := *s
	n := old[len(old)-1]
	*s = old[:len(old)-1]
	return n
}

func (s *stack) len() int { return len(*s) }

func (s *stack) best() float64 {
	b := negInf
	for _, n := range *s {
		b = max(b, n.bound)
	}
	return b
}

// boundQueue is a max-heap on bound; ties go to the node created first.
type boundQueue []*node

func (q boundQueue) Len() int { return len(q) }

func (q boundQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound > q[j].bound
	}
	return q[i].id < q[j].id
}

func (q boundQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *boundQueue) Push(x any) { *q = append(*q, x.(*node)) }

func (q *boundQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

func (q *boundQueue) push(n *node) { heap.Push(q, n) }

func (q *boundQueue) pop() *node { return heap.Pop(q).(*node) }

func (q *boundQueue) len() int { return q.Len() }

func (q *boundQueue) best() float64 {
	if q.Len() == 0 {
		return negInf
	}
	return (*q)[0].bound
}
