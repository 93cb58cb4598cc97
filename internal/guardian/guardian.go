// Package guardian keeps showcase links honest: a background worker sweeps
// active products of guardian-enabled plans and deactivates the ones whose
// affiliate URL is gone.
package guardian

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"blacklink/internal/plan"
	"blacklink/internal/repository"
)

// SweepResult summarizes one guardian pass.
type SweepResult struct {
	Checked     int `json:"checked"`
	Deactivated int `json:"deactivated"`
}

// Sweeper runs a single guardian pass on demand.
type Sweeper interface {
	Sweep(ctx context.Context) (*SweepResult, error)
}

// Guardian periodically verifies the affiliate links of active products and
// deactivates dead ones. Only owners whose plan includes the link guardian
// are swept.
type Guardian struct {
	users    repository.UserRepository
	products repository.ProductRepository
	checker  LinkChecker
	interval time.Duration
	loc      *time.Location
}

var _ Sweeper = (*Guardian)(nil)

// New builds a guardian sweeping every interval. Intervals below one second
// fall back to 30 minutes.
func New(users repository.UserRepository, products repository.ProductRepository, checker LinkChecker, interval time.Duration, loc *time.Location) *Guardian {
	if interval < time.Second {
		interval = 30 * time.Minute
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Guardian{users: users, products: products, checker: checker, interval: interval, loc: loc}
}

// Run sweeps once immediately and then on every interval until ctx is
// cancelled.
func (g *Guardian) Run(ctx context.Context) {
	logJSON(g.loc, map[string]any{
		"component": "guardian",
		"event":     "guardian_started",
		"status":    "success",
		"interval":  g.interval.String(),
	})

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		res, err := g.Sweep(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return
		case err != nil:
			logJSON(g.loc, map[string]any{
				"component":     "guardian",
				"event":         "guardian_sweep_failed",
				"status":        "error",
				"error_message": err.Error(),
			})
		default:
			logJSON(g.loc, map[string]any{
				"component":   "guardian",
				"event":       "guardian_sweep_done",
				"status":      "success",
				"checked":     res.Checked,
				"deactivated": res.Deactivated,
			})
		}

		select {
		case <-ctx.Done():
			logJSON(g.loc, map[string]any{
				"component": "guardian",
				"event":     "guardian_stopped",
				"status":    "success",
			})
			return
		case <-ticker.C:
		}
	}
}

// Sweep checks every active product once. Owners are resolved once per sweep;
// products whose owner is missing or whose plan has no guardian are skipped.
func (g *Guardian) Sweep(ctx context.Context) (*SweepResult, error) {
	products, err := g.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	res := &SweepResult{}
	guarded := make(map[int64]bool)
	for _, p := range products {
		enabled, seen := guarded[p.OwnerID]
		if !seen {
			owner, err := g.users.FindByID(ctx, p.OwnerID)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					return res, err
				}
				guarded[p.OwnerID] = false
				continue
			}
			enabled = plan.Get(owner.Plan).Limits.LinkGuardian
			guarded[p.OwnerID] = enabled
		}
		if !enabled {
			continue
		}

		res.Checked++
		if g.checker.Alive(ctx, p.URL) {
			continue
		}
		if err := g.products.Deactivate(ctx, p.ID); err != nil {
			return res, err
		}
		res.Deactivated++
		logJSON(g.loc, map[string]any{
			"component":  "guardian",
			"event":      "guardian_link_dead",
			"status":     "success",
			"product_id": p.ID,
			"title":      p.Title,
			"url":        p.URL,
		})
	}
	return res, nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal guardian log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
