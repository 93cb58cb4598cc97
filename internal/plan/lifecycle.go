package plan

import (
	"errors"
	"time"

	"blacklink/internal/model"
)

// ErrNotSellable is returned when a paid-plan operation targets a plan that
// cannot go through checkout (currently only Free).
var ErrNotSellable = errors.New("plan is not sellable")

// Expiry computes when a paid plan bought now (or renewed from start) runs
// out. Free never expires by payment and yields nil. Months below 1 are
// clamped to 1.
func Expiry(p Plan, start time.Time, months int) *time.Time {
	if p.ID == Free {
		return nil
	}
	if months < 1 {
		months = 1
	}
	exp := start.UTC().AddDate(0, 0, p.DurationDays*months)
	return &exp
}

// IsExpired reports whether a paid plan with the given expiry has run out.
// A nil expiry never expires.
func IsExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return expiresAt.UTC().Before(now.UTC())
}

// Sync reconciles the persisted plan state with the clock. Expired paid
// plans fall back to Free with status expired, keeping the previous plan in
// the LastPaid fields so the panel can offer a renewal. It mutates u in
// place and reports whether anything changed, so callers only persist on
// true.
func Sync(u *model.User, now time.Time) bool {
	current := Normalize(u.Plan)

	if IsExpired(u.PlanExpiresAt, now) {
		if u.LastPaidPlan == "" {
			u.LastPaidPlan = current
		}
		if u.LastPaidExpiresAt == nil {
			u.LastPaidExpiresAt = u.PlanExpiresAt
		}
		u.Plan = Free
		u.PlanStatus = StatusExpired
		u.PlanStartedAt = nil
		u.PlanExpiresAt = nil
		return true
	}

	changed := false
	if u.Plan != current {
		u.Plan = current
		changed = true
	}
	if current == Pro || current == Don {
		if u.PlanStatus != StatusActive {
			u.PlanStatus = StatusActive
			changed = true
		}
	} else if u.PlanStatus == "" {
		u.PlanStatus = StatusActive
		changed = true
	}
	return changed
}

// Upgrade applies a purchased plan to u. An active paid plan is renewed
// from its current expiry so already-paid time is never lost; anything else
// starts counting now. The plan the user held before is stored in the
// LastPaid fields.
func Upgrade(u *model.User, p Plan, months int, now time.Time) error {
	if !p.Sellable {
		return ErrNotSellable
	}

	now = now.UTC()
	start := now
	if (u.Plan == Pro || u.Plan == Don) &&
		u.PlanStatus == StatusActive &&
		u.PlanExpiresAt != nil &&
		u.PlanExpiresAt.After(now) {
		start = u.PlanExpiresAt.UTC()
	}

	expires := Expiry(p, start, months)

	if u.Plan == Pro || u.Plan == Don {
		u.LastPaidPlan = u.Plan
		u.LastPaidExpiresAt = u.PlanExpiresAt
	}

	u.Plan = p.ID
	u.PlanStatus = StatusActive
	u.PlanStartedAt = &start
	u.PlanExpiresAt = expires
	return nil
}
