// Package mandel implements the escape-time kernel shared by the benchmark
// driver and the viewer.
//
// The recurrence z ← z² + c is written once, in Step, and the escape test
// |z| > 2 once, in Escaped. Two drivers sit on top of that pair:
//
//   - EscapeCount classifies a single point with a scalar loop.
//   - Naive and Batched evaluate a whole Grid. Naive calls EscapeCount per
//     cell; Batched advances every cell together, one masked pass per
//     iteration, and only updates cells whose mask is still set.
//
// Both grid drivers sample the plane with Linspace and must return
// bit-identical counts. The escape test is applied to the value of z produced
// by the previous iteration (check, then update); swapping that order shifts
// every count near the boundary by one.
//
// Invalid arguments are reported as errors wrapping ErrInvalidArgument.
// Everything in this package is synchronous and allocation-per-call; no state
// is shared between invocations.
package mandel
