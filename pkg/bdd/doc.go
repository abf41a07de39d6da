// Package bdd builds Reduced Ordered Binary Decision Diagrams (ROBDDs) from
// truth tables and combines them under binary boolean operators.
//
// # Overview
//
// A truth table of length 2^n is turned into a full decision tree by [Build].
// The root decides on x<n>, the deepest internal level on x1, and the leaves
// hold the table entries in order. [Sign] decorates every node with a
// structural word that identifies its subtree, and [Compress] uses those words
// to share identical subtrees (hash-consing) and, optionally, to drop nodes
// whose two children are the same. The result is a [Canonical] diagram:
//
//	t, _ := bdd.Build([]bool{false, true, false, true})
//	d, _ := bdd.Canonicalize(t, true)
//	d.NodeCount() // 3: x1 with leaves False and True
//
// # Combining diagrams
//
// Two canonical diagrams are paired by [Merge] into a [Product]. Every product
// node carries the sub-tables of both functions below it, so [Combine] can
// apply an [Operator] position by position and reduce the outcome into the
// ROBDD of the combined function:
//
//	p, _ := bdd.Merge(a, b)
//	c, _ := bdd.Combine(p, bdd.OpAnd)
//
// Diagrams over a different number of variables, or that skip different
// levels, are aligned by holding the side with the lower variable fixed while
// the other advances.
//
// # Labels
//
// Node labels are a closed sum type ([Variable], [Leaf], [Signature],
// [Merged], [PairedBits], [CombinedBits]). Each stage wrapper ([Tree],
// [Signed], [Canonical], [Product]) only ever exposes the labels its stage
// produces; intermediate labels are rewritten before a diagram is returned.
//
// # Concurrency
//
// All functions are synchronous and allocate their own registries per call.
// Returned diagrams are never mutated again and can be shared between
// goroutines for reading.
package bdd
