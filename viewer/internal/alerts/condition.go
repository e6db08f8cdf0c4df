package alerts

import (
	"strconv"
	"strings"
	"time"

	"github.com/mandelbench/mandelbench/pkg/mandel"
	"github.com/mandelbench/mandelbench/pkg/types"
)

// evalCondition evaluates a rule condition against a report.
//
// Supported expressions (field operator value):
//
//	speedup < 1
//	naive_median_ms > 500
//	batched_median_ms > 200
//	max_iter >= 1000
//	agree == false
//
// It returns whether the rule fires and the value that was compared. A
// condition that cannot be parsed, or whose field the report does not carry,
// never fires.
func evalCondition(cond string, rep *types.Report) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if field == "agree" {
		want, err := strconv.ParseBool(rhs)
		if err != nil || rep.Agree == nil {
			return false, 0
		}
		switch op {
		case "==":
			return *rep.Agree == want, boolValue(*rep.Agree)
		case "!=":
			return *rep.Agree != want, boolValue(*rep.Agree)
		}
		return false, 0
	}

	v, ok := numericField(field, rep)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in rep.
func numericField(field string, rep *types.Report) (float64, bool) {
	switch field {
	case "speedup":
		return rep.Speedup()
	case "naive_median_ms":
		return medianMs(rep, mandel.MethodNaive)
	case "batched_median_ms":
		return medianMs(rep, mandel.MethodBatched)
	case "max_iter":
		return float64(rep.MaxIter), true
	case "cells":
		return float64(rep.Width * rep.Height), true
	}
	return 0, false
}

func medianMs(rep *types.Report, m mandel.Method) (float64, bool) {
	res, ok := rep.Result(m)
	if !ok {
		return 0, false
	}
	return float64(res.Median) / float64(time.Millisecond), true
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}
