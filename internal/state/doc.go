// Package state defines the immutable, validated configuration States of a
// SANS reduction, one per concern.
//
// Every State wraps a bag of values that has already passed its Schema's
// descriptors. Values are unexported; accessors return copies, so a State
// may be shared freely between goroutines once built.
//
// States are produced by builders (package builder) or rehydrated with
// Decode. Decode only checks types: a decoded State must still pass
// Validate before it is used, and a State returned by a builder always has.
//
// Validation is exhaustive. Validate reports every failed check of a State
// in one *ValidationError rather than stopping at the first.
//
// Error codes:
//
//	E200       descriptor constraint
//	E201       required field not set
//	E210-E219  data
//	E220-E229  move
//	E230-E239  mask
//	E240-E249  scale
//	E250-E259  save
//	E260-E269  compatibility
//	E270-E279  reduction
//	E280-E289  wavelength
package state
