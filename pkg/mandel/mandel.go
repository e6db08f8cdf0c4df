package mandel

import (
	"errors"
	"fmt"
	"math/cmplx"
)

// ErrInvalidArgument is wrapped by every validation error returned from this
// package. Test for it with errors.Is.
var ErrInvalidArgument = errors.New("mandel: invalid argument")

// escapeRadius bounds |z|; an orbit that leaves the disc diverges.
const escapeRadius = 2.0

// Step applies one iteration of the recurrence.
//
// The explicit conversions stop the compiler from fusing the multiply and
// add, so every caller rounds the same way on every architecture.
func Step(z, c complex128) complex128 {
	return complex128(z*z) + c
}

// Escaped reports whether |z| is strictly greater than 2. The modulus is the
// rounded hypot, not the squared sum: the two differ within an ulp of the
// radius.
func Escaped(z complex128) bool {
	return cmplx.Abs(z) > escapeRadius
}

// EscapeCount returns the number of iterations before the orbit of c escaped,
// or maxIter if it stayed bounded for maxIter iterations.
//
// z starts at 0 and the escape test runs before each update, so the result
// for c = 2 is 2: the orbit 0 → 2 → 6 only exceeds the radius on the third
// check.
func EscapeCount(c complex128, maxIter int) (int, error) {
	if err := checkMaxIter(maxIter); err != nil {
		return 0, err
	}
	return escapeCount(c, maxIter), nil
}

func escapeCount(c complex128, maxIter int) int {
	var z complex128
	for n := 0; n < maxIter; n++ {
		if Escaped(z) {
			return n
		}
		z = Step(z, c)
	}
	return maxIter
}

func checkMaxIter(maxIter int) error {
	if maxIter <= 0 {
		return fmt.Errorf("%w: max_iter must be positive, got %d", ErrInvalidArgument, maxIter)
	}
	return nil
}
