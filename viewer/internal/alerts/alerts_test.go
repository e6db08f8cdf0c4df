package alerts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mandelbench/mandelbench/pkg/types"
	"github.com/mandelbench/mandelbench/viewer/internal/config"
)

func report(id, region string, naive, batched time.Duration, agree bool) *types.Report {
	return &types.Report{
		ID:      id,
		Region:  region,
		MaxIter: 100,
		Results: []types.MethodResult{
			{Method: "naive", Median: naive},
			{Method: "batched", Median: batched},
		},
		Agree: &agree,
	}
}

// captured collects delivered alerts synchronously.
type captured struct {
	mu     sync.Mutex
	alerts []*Alert
}

func (c *captured) add(a *Alert) {
	c.mu.Lock()
	c.alerts = append(c.alerts, a)
	c.mu.Unlock()
}

func newEngine(rules ...config.AlertRule) (*Engine, *captured, *time.Time) {
	e := New(config.AlertsConfig{Rules: rules})
	c := &captured{}
	e.deliverFn = c.add
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	return e, c, &now
}

func TestEvalCondition(t *testing.T) {
	ms := time.Millisecond
	rep := report("r", "classic", 300*ms, 100*ms, true)

	tests := []struct {
		cond      string
		wantFire  bool
		wantValue float64
	}{
		{"speedup > 2", true, 3},
		{"speedup < 1", false, 3},
		{"naive_median_ms >= 300", true, 300},
		{"batched_median_ms > 100", false, 100},
		{"max_iter == 100", true, 100},
		{"agree == true", true, 1},
		{"agree == false", false, 1},
		{"agree != true", false, 1},
		{"unknown_field > 1", false, 0},
		{"speedup > abc", false, 0},
		{"speedup ~ 1", false, 3},
		{"speedup>1", false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.cond, func(t *testing.T) {
			fires, v := evalCondition(tc.cond, rep)
			if fires != tc.wantFire || v != tc.wantValue {
				t.Errorf("got (%v, %v), want (%v, %v)", fires, v, tc.wantFire, tc.wantValue)
			}
		})
	}
}

func TestEvalCondition_MissingData(t *testing.T) {
	rep := &types.Report{ID: "r", Results: []types.MethodResult{{Method: "naive", Median: time.Second}}}
	for _, cond := range []string{"speedup < 100", "batched_median_ms > 0", "agree == false"} {
		if fires, _ := evalCondition(cond, rep); fires {
			t.Errorf("%s: fired on a report without the field", cond)
		}
	}
}

func TestEngine_FireAndResolve(t *testing.T) {
	e, c, _ := newEngine(config.AlertRule{Name: "slow-batched", Condition: "speedup < 1", Severity: "critical"})
	ms := time.Millisecond

	e.Evaluate(report("r1", "classic", 100*ms, 200*ms, true))
	if len(c.alerts) != 1 || c.alerts[0].State != "firing" || c.alerts[0].Severity != "critical" {
		t.Fatalf("after slow run: got %+v", c.alerts)
	}
	if c.alerts[0].ReportID != "r1" || c.alerts[0].Value != 0.5 {
		t.Errorf("alert: got report=%q value=%v", c.alerts[0].ReportID, c.alerts[0].Value)
	}
	if got := e.Active(); len(got) != 1 {
		t.Errorf("Active: got %d, want 1", len(got))
	}

	// A different region does not resolve it.
	e.Evaluate(report("r2", "seahorse-valley", 200*ms, 100*ms, true))
	if len(c.alerts) != 1 {
		t.Fatalf("other region delivered %d alerts", len(c.alerts)-1)
	}

	e.Evaluate(report("r3", "classic", 200*ms, 100*ms, true))
	if len(c.alerts) != 2 || c.alerts[1].State != "resolved" || c.alerts[1].ResolvedAt == nil {
		t.Fatalf("after fast run: got %+v", c.alerts)
	}
	active := e.Active()
	if len(active) != 1 || active[0].State != "resolved" {
		t.Errorf("Active after resolve: got %+v", active)
	}
}

func TestEngine_Cooldown(t *testing.T) {
	e, c, now := newEngine(config.AlertRule{Name: "disagree", Condition: "agree == false", Cooldown: time.Minute})
	ms := time.Millisecond

	e.Evaluate(report("r1", "classic", ms, ms, false))
	*now = now.Add(30 * time.Second)
	e.Evaluate(report("r2", "classic", ms, ms, false))
	if len(c.alerts) != 1 {
		t.Fatalf("within cooldown: got %d deliveries, want 1", len(c.alerts))
	}

	*now = now.Add(time.Minute)
	e.Evaluate(report("r3", "classic", ms, ms, false))
	if len(c.alerts) != 2 {
		t.Fatalf("after cooldown: got %d deliveries, want 2", len(c.alerts))
	}
	if c.alerts[1].Severity != "warning" {
		t.Errorf("default severity: got %q, want warning", c.alerts[1].Severity)
	}
}

func TestEngine_NoRules(t *testing.T) {
	e, c, _ := newEngine()
	e.Evaluate(report("r", "classic", time.Second, 2*time.Second, false))
	if len(c.alerts) != 0 || len(e.Active()) != 0 {
		t.Error("engine without rules produced alerts")
	}
}

func TestDeliver_Webhooks(t *testing.T) {
	type hit struct {
		path string
		body map[string]interface{}
	}
	var mu sync.Mutex
	var hits []hit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		mu.Lock()
		hits = append(hits, hit{path: r.URL.Path, body: body})
		mu.Unlock()
	}))
	defer srv.Close()

	t.Setenv("TEST_SLACK", srv.URL+"/slack")
	t.Setenv("TEST_TEAMS", srv.URL+"/teams")
	t.Setenv("TEST_HTTP", srv.URL+"/http")

	e := New(config.AlertsConfig{Webhooks: []config.WebhookConfig{
		{Type: "slack", URLEnv: "TEST_SLACK"},
		{Type: "teams", URLEnv: "TEST_TEAMS"},
		{Type: "http", URLEnv: "TEST_HTTP"},
		{Type: "http", URLEnv: "TEST_UNSET_URL"},
	}})
	e.deliver(&Alert{RuleName: "slow", Severity: "critical", State: "firing", Message: "slow fired"})

	mu.Lock()
	defer mu.Unlock()
	if len(hits) != 3 {
		t.Fatalf("hits: got %d, want 3", len(hits))
	}
	if hits[0].path != "/slack" || hits[0].body["text"] != "*[CRITICAL]* slow fired" {
		t.Errorf("slack: got %+v", hits[0])
	}
	if hits[1].path != "/teams" || hits[1].body["themeColor"] != "FF4F6A" {
		t.Errorf("teams: got %+v", hits[1])
	}
	if a, ok := hits[2].body["alert"].(map[string]interface{}); !ok || a["rule_name"] != "slow" {
		t.Errorf("http: got %+v", hits[2])
	}
}
