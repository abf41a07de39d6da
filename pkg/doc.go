// Package pkg provides the libraries behind robdd, a toolkit for reduced
// ordered binary decision diagrams (ROBDDs).
//
// # Overview
//
// A boolean function of n variables is given by its truth table of 2^n
// entries. robdd builds the decision tree of the table, compresses it into
// the canonical ROBDD, merges two diagrams into their product and reduces
// the product under a binary operator. The packages are organized as:
//
//  1. [bdd] - Diagram construction, canonicalization, merge and combine
//  2. [bitvec] - Truth table encoding of integers
//  3. [experiment] - Size distribution over all or sampled functions
//  4. [pipeline] - Orchestration (build → combine → render) with caching
//  5. [render] - DOT, SVG, PNG and PDF output
//  6. [io] - JSON import and export of diagrams
//  7. [server] - HTTP API over the pipeline
//  8. [cache], [records], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow through robdd:
//
//	Integer + width
//	     ↓
//	[bitvec] package (truth table)
//	     ↓
//	[bdd] package (tree → signatures → canonical diagram)
//	     ↓
//	[bdd] package (merge two diagrams, combine under an operator)
//	     ↓
//	[render] package (DOT/SVG/PNG/PDF) and [io] package (JSON)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/robdd/pkg/bdd"
//	    "github.com/matzehuels/robdd/pkg/bitvec"
//	)
//
//	a, _ := bdd.FromTable(bitvec.Table(0b0101, 4))
//	b, _ := bdd.FromTable(bitvec.Table(0b0011, 4))
//	p, _ := bdd.Merge(a, b)
//	and, _ := bdd.Combine(p, bdd.OpAnd)
//	fmt.Println(and.NodeCount())
//
// # Command-Line Tool
//
// The robdd CLI (cmd/robdd) exposes the same pipeline:
//
//	robdd build 0x6996 -w 16 -f svg
//	robdd combine 0b0101 0b0011 -w 4 --op and
//	robdd experiment --vars 4
//	robdd serve --addr :8080
package pkg
