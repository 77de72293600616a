// Package mpmc implements a lock-free multi-producer, multi-consumer stack.
//
// Producers push single values or pre-linked chains with a compare-and-swap
// on the shared head. Consumers never pop one node at a time: Acquire swaps
// the head with nil and takes the whole chain, newest first, so concurrent
// consumers each receive a disjoint batch.
//
//	var s mpmc.Stack[Job]
//
//	// producers
//	s.Push(Job{ID: 1})
//
//	// consumer
//	for n := s.Acquire(); n != nil; {
//	    next := n.Next
//	    run(n.Value)
//	    n = next
//	}
//
// Consumed nodes should be handed back with Reclaim so later pushes reuse
// them instead of allocating. Recycled nodes sit on a global free list that,
// like the stack itself, is only ever emptied wholesale; each P keeps the
// chain it last took from that list in a private cache.
package mpmc
