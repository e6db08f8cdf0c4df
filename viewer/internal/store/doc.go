// Package store holds shipped benchmark reports in memory. It provides a
// thread-safe store keyed by report ID with TTL eviction.
package store
