package mpmc

import (
	"sync"
	"sync/atomic"
)

// Node is one element of a Stack chain. A node is owned by exactly one of:
// a Stack, its free list, a per-P cache, or the goroutine that acquired it.
type Node[T any] struct {
	Value T
	Next  *Node[T]
}

// nodeCache is a private chain of recycled nodes.
type nodeCache[T any] struct {
	head *Node[T]
}

// Stack is a lock-free MPMC stack. The zero value is an empty stack ready for
// use; New additionally enables statistics. A Stack must not be copied after
// first use.
type Stack[T any] struct {
	head   atomic.Pointer[Node[T]]
	free   atomic.Pointer[Node[T]]
	caches sync.Pool
	stats  *stackStats
}

// New returns an empty stack that records Stats.
func New[T any]() *Stack[T] {
	return &Stack[T]{stats: newStackStats()}
}

// Push prepends v using a recycled node when one is available.
func (s *Stack[T]) Push(v T) {
	n := s.CreateNode(v)
	s.PushChain(n, n)
}

// PushNode prepends a single node the caller owns.
func (s *Stack[T]) PushNode(n *Node[T]) {
	s.PushChain(n, n)
}

// PushChain atomically prepends the chain head..tail. The caller must own
// every node in it; tail.Next is overwritten.
func (s *Stack[T]) PushChain(head, tail *Node[T]) {
	for {
		old := s.head.Load()
		tail.Next = old
		if s.head.CompareAndSwap(old, head) {
			s.stats.pushed()
			return
		}
		s.stats.retry()
	}
}

// Acquire takes the entire stack, newest node first, and leaves it empty.
// It returns nil when the stack is empty.
func (s *Stack[T]) Acquire() *Node[T] {
	n := s.head.Swap(nil)
	if n != nil {
		s.stats.acquired()
	}
	return n
}

// Empty reports whether the stack currently holds no node.
func (s *Stack[T]) Empty() bool {
	return s.head.Load() == nil
}

// CreateNode returns a detached node holding v. It reuses a node from the
// per-P cache, then from the global free list, before allocating.
func (s *Stack[T]) CreateNode(v T) *Node[T] {
	c, _ := s.caches.Get().(*nodeCache[T])
	if c == nil {
		c = &nodeCache[T]{}
	}
	n := c.head
	if n == nil {
		// Take the whole global list; what we do not use stays in the cache.
		n = s.free.Swap(nil)
	}
	if n == nil {
		s.caches.Put(c)
		s.stats.allocated()
		return &Node[T]{Value: v}
	}
	c.head = n.Next
	s.caches.Put(c)
	s.stats.recycled()

	n.Value = v
	n.Next = nil
	return n
}

// Reclaim returns a consumed chain to the free list for reuse. Values are
// cleared so the nodes do not keep them alive.
func (s *Stack[T]) Reclaim(head *Node[T]) {
	if head == nil {
		return
	}
	var zero T
	tail := head
	for {
		tail.Value = zero
		if tail.Next == nil {
			break
		}
		tail = tail.Next
	}
	s.ReclaimChain(head, tail)
}

// ReclaimChain returns the chain head..tail to the free list without walking
// it. Values are left as they are.
func (s *Stack[T]) ReclaimChain(head, tail *Node[T]) {
	for {
		old := s.free.Load()
		tail.Next = old
		if s.free.CompareAndSwap(old, head) {
			return
		}
		s.stats.retry()
	}
}

// Drain acquires the stack, calls fn for each value newest first, reclaims
// the nodes and returns how many values were visited.
func (s *Stack[T]) Drain(fn func(T)) int {
	head := s.Acquire()
	count := 0
	for n := head; n != nil; n = n.Next {
		fn(n.Value)
		count++
	}
	s.Reclaim(head)
	return count
}

// Stats returns activity counters. It is all zeros for stacks not built by New.
func (s *Stack[T]) Stats() Stats {
	return s.stats.snapshot()
}

// DestroyNode detaches n and clears its value so the collector can free it.
func DestroyNode[T any](n *Node[T]) {
	var zero T
	n.Value = zero
	n.Next = nil
}

// DestroyNodes destroys every node of the chain starting at head.
func DestroyNodes[T any](head *Node[T]) {
	for head != nil {
		next := head.Next
		DestroyNode(head)
		head = next
	}
}

// Len counts the nodes of a chain.
func Len[T any](head *Node[T]) int {
	n := 0
	for ; head != nil; head = head.Next {
		n++
	}
	return n
}

// Reverse reverses a chain in place and returns its new head and tail. Use it
// to consume an acquired chain in push order.
func Reverse[T any](head *Node[T]) (newHead, tail *Node[T]) {
	tail = head
	for head != nil {
		next := head.Next
		head.Next = newHead
		newHead = head
		head = next
	}
	return newHead, tail
}
