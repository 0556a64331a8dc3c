// Package serialization reads and writes named ITensors in the .itns format.
//
// The .itns format is a small binary container for labeled tensors:
//
//	Format Structure:
//	  [4 bytes: Magic "ITNS"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [32 bytes: SHA-256 of the data section]
//	  [Header: JSON metadata]
//	  [Data section: one storage record per tensor]
//
// The JSON header lists every tensor with its indices (identity, name, size,
// type, prime level, arrow), scale factor, storage kind and the byte range of
// its storage record. Storage records use the little-endian encoding of
// storage.Write.
//
// Example usage:
//
//	err := serialization.WriteFile("state.itns", map[string]*itensor.ITensor{"psi": psi}, nil)
//
//	f, err := serialization.ReadFile("state.itns")
//	psi := f.Tensors["psi"]
package serialization
