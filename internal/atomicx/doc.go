// Package atomicx provides the lock-free numeric primitives shared by the
// reservoirs and metrics.
//
// The types wrap go.uber.org/atomic values and pad them to a cache line so
// that hot counters sitting next to each other in a struct do not false-share.
// None of the types may be copied after first use.
package atomicx
