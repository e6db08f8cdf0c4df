package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/mandelbench/mandelbench/pkg/types"
	"github.com/mandelbench/mandelbench/viewer/internal/config"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert is a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Region     string     `json:"region"`
	ReportID   string     `json:"report_id"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine evaluates alert rules against incoming reports and delivers webhook
// notifications when rules fire or resolve. Alerts are keyed by rule and
// region, so a later report for the same region resolves an earlier alert.
//
// Engine is safe for concurrent use.
type Engine struct {
	rules    []config.AlertRule
	webhooks []config.WebhookConfig

	mu       sync.Mutex
	active   map[string]*Alert    // key: "ruleName:region"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
	now      func() time.Time

	// deliverFn is how alerts leave the engine; tests replace it.
	deliverFn func(*Alert)
}

// New creates an Engine from the viewer alert configuration.
// An Engine with no rules is valid; Evaluate is then a no-op.
func New(cfg config.AlertsConfig) *Engine {
	e := &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
	e.deliverFn = func(a *Alert) { go e.deliver(a) }
	return e
}

// Evaluate tests all rules against rep. Alerts that fire are stored and
// delivered asynchronously; firing alerts whose condition is now false are
// resolved.
func (e *Engine) Evaluate(rep *types.Report) {
	if len(e.rules) == 0 {
		return
	}

	region := rep.Region
	if region == "" {
		region = "custom"
	}
	now := e.now()

	for _, rule := range e.rules {
		key := rule.Name + ":" + region
		fires, value := evalCondition(rule.Condition, rep)

		e.mu.Lock()
		var out *Alert
		switch {
		case fires:
			cooldown := rule.Cooldown
			if cooldown <= 0 {
				cooldown = defaultCooldown
			}
			if now.Sub(e.lastFire[key]) <= cooldown {
				break
			}
			sev := rule.Severity
			if sev == "" {
				sev = "warning"
			}
			a := &Alert{
				ID:       fmt.Sprintf("%s:%s:%d", rule.Name, region, now.UnixNano()),
				RuleName: rule.Name,
				Region:   region,
				ReportID: rep.ID,
				Severity: sev,
				Value:    value,
				Message: fmt.Sprintf("[%s] %s fired on %s (report %s): %s = %.2f",
					sev, rule.Name, region, rep.ID, rule.Condition, value),
				FiredAt: now,
				State:   "firing",
			}
			e.active[key] = a
			e.lastFire[key] = now
			cp := *a
			out = &cp
			slog.Warn("alert fired", "rule", rule.Name, "region", region, "report", rep.ID,
				"value", value, "severity", sev)

		default:
			a, ok := e.active[key]
			if !ok {
				break
			}
			resolved := now
			a.State = "resolved"
			a.ResolvedAt = &resolved
			delete(e.active, key)

			e.history = append(e.history, a)
			if len(e.history) > maxHistoryLen {
				e.history = e.history[len(e.history)-maxHistoryLen:]
			}
			cp := *a
			out = &cp
			slog.Info("alert resolved", "rule", rule.Name, "region", region, "report", rep.ID)
		}
		e.mu.Unlock()

		if out != nil {
			e.deliverFn(out)
		}
	}
}

// Active returns copies of all firing alerts plus alerts resolved within the
// past hour, newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}
