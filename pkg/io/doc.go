// Package io provides JSON import and export for decision diagrams.
//
// # JSON Format
//
//	{
//	  "vars": 2,
//	  "root": "n0",
//	  "nodes": [
//	    {"id": "n0", "label": "x2", "low": "n1", "high": "n4"},
//	    {"id": "n1", "label": "x1", "low": "n2", "high": "n3"},
//	    {"id": "n2", "label": "False"},
//	    {"id": "n3", "label": "True"},
//	    {"id": "n4", "label": "x1", "low": "n3", "high": "n2"}
//	  ]
//	}
//
// Every distinct node appears once. Leaves omit "low" and "high"; decision
// nodes carry both. Ids are "n<i>" in walk order from the root, but any
// unique strings are accepted on import.
//
// # Import
//
// [ReadJSON] rebuilds a [bdd.Canonical] and hash-conses the nodes on the way
// in, so a file that lists the same node twice under different ids still
// yields a canonical diagram. Dangling ids, cycles, labels other than
// "x<i>"/"True"/"False" and edges that do not descend to a lower variable are
// rejected with an INVALID_INPUT error; malformed JSON is INVALID_FORMAT.
//
// # Export
//
// [WriteJSON] writes any diagram; intermediate stages (products, signed
// trees) are written with their rendered labels and cannot be read back.
package io
