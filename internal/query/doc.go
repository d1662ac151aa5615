// Package query implements the keyed, single-flight cache every correction read goes through.
//
// # Keys
//
// A [Key] is an operation [Tag] followed by parameters, e.g. ["correction::compare",98,104].
// Equal tags and parameters always map to the same slot.
//
// # Semantics
//
//   - [Cache.Ensure] returns the cached value or runs the producer once for all concurrent callers
//   - failures are shared with every waiter and never cached
//   - [Cache.Set] seeds a value without calling a producer (preview scenarios use this)
//   - a slot version guards writes so a superseded fetch never overwrites a newer value
//
// The typed helpers [Ensure], [Seed] and [Peek] wrap the untyped cache; [Options] binds a
// services.CorrectionAPI to the six correction operations.
//
// A [Store] (the SQLite snapshot repository) optionally persists results across runs, subject to a TTL.
package query
