// Package aggregates holds the write-boundary primitives shared by services:
// the transaction runner, compare-and-set guards and storage error mapping.
package aggregates
