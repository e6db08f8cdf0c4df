package shipper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/mandelbench/mandelbench/bench/internal/config"
	"github.com/mandelbench/mandelbench/pkg/types"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
	sendTimeout       = 10 * time.Second

	reportsPath = "/api/v1/reports"
)

// Shipper buffers reports and ships them to the viewer over HTTP.
type Shipper struct {
	cfg    config.ViewerConfig
	buf    chan *types.Report
	client *http.Client

	// wait is injectable so tests do not sleep through real backoff.
	wait func(ctx context.Context, d time.Duration) bool
}

// New creates a Shipper for the given viewer config.
func New(cfg config.ViewerConfig) *Shipper {
	size := cfg.BufferSize
	if size <= 0 {
		size = config.DefaultBufferSize
	}
	return &Shipper{
		cfg:    cfg,
		buf:    make(chan *types.Report, size),
		client: &http.Client{Timeout: sendTimeout},
		wait:   sleepCtx,
	}
}

// Ship enqueues rep. If the buffer is full the oldest report is evicted.
func (s *Shipper) Ship(rep *types.Report) {
	select {
	case s.buf <- rep:
	default:
		select {
		case old := <-s.buf:
			slog.Warn("shipper: buffer full, evicted oldest report",
				"evicted", old.ID, "buffer_cap", cap(s.buf))
		default:
		}
		s.buf <- rep
	}
}

// Pending returns the number of buffered reports.
func (s *Shipper) Pending() int {
	return len(s.buf)
}

// Run drains the buffer until ctx is cancelled, retrying failed sends with
// backoff.
func (s *Shipper) Run(ctx context.Context) {
	bo := newBackoff()
	for {
		select {
		case <-ctx.Done():
			return
		case rep := <-s.buf:
			for {
				err := s.send(ctx, rep)
				if err == nil {
					bo.reset()
					break
				}
				if isPermanent(err) {
					slog.Error("shipper: permanent send error, discarding report",
						"id", rep.ID, "err", err)
					break
				}
				wait := bo.next()
				slog.Warn("shipper: send failed, will retry",
					"endpoint", s.cfg.Endpoint, "id", rep.ID, "err", err, "retry_in", wait)
				if !s.wait(ctx, wait) {
					return
				}
			}
		}
	}
}

// Flush sends every buffered report once. It returns the errors of the
// reports that could not be delivered; those reports are dropped.
func (s *Shipper) Flush(ctx context.Context) error {
	var errs []error
	for {
		select {
		case rep := <-s.buf:
			if err := s.send(ctx, rep); err != nil {
				errs = append(errs, fmt.Errorf("report %s: %w", rep.ID, err))
			}
		default:
			return errors.Join(errs...)
		}
	}
}

// errEncode marks a report that cannot be serialised.
var errEncode = errors.New("encode report")

// statusError is a non-2xx response from the viewer.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (s *Shipper) send(ctx context.Context, rep *types.Report) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("%w: %v", errEncode, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	url := strings.TrimRight(s.cfg.Endpoint, "/") + reportsPath
	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Auth.Mode == "apikey" {
		req.Header.Set(s.cfg.Auth.Header, s.cfg.Auth.Key())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}
	slog.Debug("shipper: report delivered", "id", rep.ID)
	return nil
}

// isPermanent reports whether retrying err cannot succeed.
func isPermanent(err error) bool {
	if errors.Is(err, errEncode) {
		return true
	}
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.code >= 400 && se.code < 500
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	current time.Duration
}

func newBackoff() *backoff {
	return &backoff{current: backoffInitial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	return d
}

func (b *backoff) reset() {
	b.current = backoffInitial
}
