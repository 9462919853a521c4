// Package serialization saves and loads computation graph snapshots.
//
// Every node's rule is plain data (an operation tag, operand handles and an
// exponent), so a graph can be written out after a backward pass and
// inspected or rebuilt later.
//
//	Format Structure:
//	  [4 bytes: Magic "MGRD"]
//	  [4 bytes: Version (uint32 LE)]
//	  [8 bytes: Payload Size (uint64 LE)]
//	  [32 bytes: SHA-256 of the payload]
//	  [Payload: JSON GraphSnapshot]
//
// Non-finite values (NaN, ±Inf from domain errors) are stored as the JSON
// strings "NaN", "+Inf" and "-Inf".
//
// Example usage:
//
//	snap := serialization.Snapshot(g, root)
//	if err := serialization.WriteFile("graph.mgrd", snap); err != nil {
//	    log.Fatal(err)
//	}
//
//	snap, err := serialization.ReadFile("graph.mgrd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g, err := serialization.Restore(snap)
package serialization
