// Package health reports readiness of the database and the policy engine.
package health

import (
	"context"
	"time"
)

// Pinger checks database connectivity, e.g. *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks the role policy engine, e.g. the OPA evaluator.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

const checkTimeout = 2 * time.Second

// Report is the outcome of one readiness check.
type Report struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    float64           `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// Healthy reports whether every component passed.
func (r Report) Healthy() bool { return r.Status == "ok" }

// Checker runs readiness checks. Nil components are skipped.
type Checker struct {
	db      Pinger
	policy  PolicyChecker
	started time.Time
	now     func() time.Time
}

func NewChecker(db Pinger, policy PolicyChecker) *Checker {
	return &Checker{db: db, policy: policy, started: time.Now(), now: time.Now}
}

// Check runs every configured component check with a short timeout.
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	now := c.now()
	r := Report{Status: "ok", Timestamp: now.UTC(), Uptime: now.Sub(c.started).Seconds(), Checks: map[string]string{}}
	if c.db != nil {
		r.record("database", c.db.PingContext(ctx))
	}
	if c.policy != nil {
		r.record("policy", c.policy.HealthCheck(ctx))
	}
	return r
}

func (r *Report) record(name string, err error) {
	if err != nil {
		r.Status = "degraded"
		r.Checks[name] = "error: " + err.Error()
		return
	}
	r.Checks[name] = "ok"
}
