package mandel

import "fmt"

// Method selects a grid evaluation strategy.
type Method int

const (
	MethodNaive Method = iota
	MethodBatched
)

// Methods lists every strategy in the order the benchmark runs them.
var Methods = []Method{MethodNaive, MethodBatched}

func (m Method) String() string {
	switch m {
	case MethodNaive:
		return "naive"
	case MethodBatched:
		return "batched"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod is the inverse of Method.String.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown method %q", ErrInvalidArgument, s)
}

// Evaluate runs the grid evaluator selected by m.
func Evaluate(m Method, b Bounds, width, height, maxIter int) (*Grid, error) {
	switch m {
	case MethodNaive:
		return Naive(b, width, height, maxIter)
	case MethodBatched:
		return Batched(b, width, height, maxIter)
	}
	return nil, fmt.Errorf("%w: unknown method %v", ErrInvalidArgument, m)
}
