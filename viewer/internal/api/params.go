package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/mandelbench/mandelbench/pkg/mandel"
)

// Defaults for on-demand evaluation when the query omits a parameter.
const (
	defaultMaxIter    = 100
	defaultGridSize   = 64
	defaultImageSize  = 256
	defaultPalette    = "hsv"
	defaultGridMethod = mandel.MethodBatched
)

// gridRequest is the parsed query of a grid or image request.
type gridRequest struct {
	region  string
	bounds  mandel.Bounds
	width   int
	height  int
	maxIter int
	method  mandel.Method
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", mandel.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// floatParam parses a finite float. ok is false when the parameter is absent.
func floatParam(q url.Values, name string) (v float64, ok bool, err error) {
	s := q.Get(name)
	if s == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, invalid("%s must be a finite number, got %q", name, s)
	}
	return v, true, nil
}

// intParam parses a positive integer no larger than limit (0 means no limit),
// falling back to def when absent.
func intParam(q url.Values, name string, def, limit int) (int, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, invalid("%s must be a positive integer, got %q", name, s)
	}
	if limit > 0 && v > limit {
		return 0, invalid("%s %d exceeds limit %d", name, v, limit)
	}
	return v, nil
}

// parsePoint reads re, im and max_iter.
func (h *Handler) parsePoint(q url.Values) (complex128, int, error) {
	re, ok, err := floatParam(q, "re")
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, invalid("re is required")
	}
	im, ok, err := floatParam(q, "im")
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, invalid("im is required")
	}
	maxIter, err := intParam(q, "max_iter", defaultMaxIter, h.cfg.MaxIterLimit)
	if err != nil {
		return 0, 0, err
	}
	return complex(re, im), maxIter, nil
}

// parseGrid reads the window, resolution, iteration cap and method. size is
// the default edge length when width or height is absent.
func (h *Handler) parseGrid(q url.Values, size int) (gridRequest, error) {
	var req gridRequest

	b, explicit, err := boundsParam(q)
	if err != nil {
		return req, err
	}
	if explicit {
		req.bounds = b
	} else {
		req.region = q.Get("region")
		if req.region == "" {
			req.region = "classic"
		}
		var ok bool
		if req.bounds, ok = mandel.Region(req.region); !ok {
			return req, invalid("unknown region %q", req.region)
		}
	}
	if err := req.bounds.Validate(); err != nil {
		return req, err
	}

	if req.width, err = intParam(q, "width", size, 0); err != nil {
		return req, err
	}
	if req.height, err = intParam(q, "height", size, 0); err != nil {
		return req, err
	}
	if h.cfg.MaxPixels > 0 && req.width > h.cfg.MaxPixels/req.height {
		return req, invalid("%dx%d exceeds the %d pixel limit", req.width, req.height, h.cfg.MaxPixels)
	}
	if req.maxIter, err = intParam(q, "max_iter", defaultMaxIter, h.cfg.MaxIterLimit); err != nil {
		return req, err
	}

	req.method = defaultGridMethod
	if s := q.Get("method"); s != "" {
		if req.method, err = mandel.ParseMethod(s); err != nil {
			return req, err
		}
	}
	return req, nil
}

// boundsParam reads xmin, xmax, ymin, ymax. explicit is true when any of them
// is present, in which case all four are required.
func boundsParam(q url.Values) (b mandel.Bounds, explicit bool, err error) {
	fields := []struct {
		name string
		dst  *float64
	}{
		{"xmin", &b.Xmin}, {"xmax", &b.Xmax}, {"ymin", &b.Ymin}, {"ymax", &b.Ymax},
	}
	var missing []string
	for _, f := range fields {
		v, ok, err := floatParam(q, f.name)
		if err != nil {
			return b, true, err
		}
		if !ok {
			missing = append(missing, f.name)
			continue
		}
		explicit = true
		*f.dst = v
	}
	if explicit && len(missing) > 0 {
		return b, true, invalid("explicit bounds need xmin, xmax, ymin and ymax; missing %v", missing)
	}
	if explicit && q.Get("region") != "" {
		return b, true, invalid("region and explicit bounds are mutually exclusive")
	}
	return b, explicit, nil
}
