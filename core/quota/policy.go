package quota

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

type Tier int

const (
	TierFree Tier = iota
	TierPremium
	TierOwner
)

// Unlimited is the Remaining value of premium users.
const Unlimited = -1

type Status struct {
	UserID       int64
	Tier         Tier
	Used         int
	Remaining    int
	PremiumUntil *time.Time
	MaxSize      int64
	SpeedLimit   int64
}

func (s Status) Premium() bool {
	return s.Tier != TierFree
}

type Limits struct {
	FreeDaily  int
	FreeMax    int64
	PremiumMax int64
	// bytes per second for free users, 0 means unlimited
	FreeSpeed int64
}

// Policy applies the tier rules on top of a Store.
type Policy struct {
	store  Store
	owners []int64
	limits Limits
	now    func() time.Time
}

func NewPolicy(store Store, owners []int64, limits Limits) *Policy {
	return &Policy{store: store, owners: owners, limits: limits, now: time.Now}
}

// WithClock replaces the time source, mainly for tests.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

func (p *Policy) Store() Store {
	return p.store
}

func (p *Policy) IsOwner(userID int64) bool {
	return slices.Contains(p.owners, userID)
}

func (p *Policy) Status(ctx context.Context, userID int64) (Status, error) {
	now := p.now()
	rec, err := p.store.GetQuota(ctx, userID, Day(now))
	if err != nil {
		return Status{}, fmt.Errorf("failed to get quota: %w", err)
	}
	st := Status{UserID: userID, Used: rec.Count}
	switch {
	case p.IsOwner(userID):
		st.Tier = TierOwner
	case rec.PremiumUntil != nil && rec.PremiumUntil.After(now):
		st.Tier = TierPremium
		st.PremiumUntil = rec.PremiumUntil
	default:
		st.Tier = TierFree
		if rec.PremiumUntil != nil {
			// expired, clear it lazily
			if err := p.store.RevokePremium(ctx, userID); err != nil {
				log.FromContext(ctx).Warn("Failed to clear expired premium", "user", userID, "err", err)
			}
		}
	}
	if st.Premium() {
		st.Remaining = Unlimited
		st.MaxSize = p.limits.PremiumMax
		return st, nil
	}
	st.Remaining = max(p.limits.FreeDaily-rec.Count, 0)
	st.MaxSize = p.limits.FreeMax
	st.SpeedLimit = p.limits.FreeSpeed
	return st, nil
}

// CanSubmit gates a whole message of n links while pending tasks are still queued.
func (p *Policy) CanSubmit(ctx context.Context, userID int64, n, pending int) (bool, Status, error) {
	st, err := p.Status(ctx, userID)
	if err != nil {
		return false, st, err
	}
	if st.Premium() {
		return true, st, nil
	}
	return n <= st.Remaining-pending, st, nil
}

// Charge counts one delivered task against the daily quota.
func (p *Policy) Charge(ctx context.Context, userID int64) error {
	if p.IsOwner(userID) {
		return nil
	}
	now := p.now()
	rec, err := p.store.GetQuota(ctx, userID, Day(now))
	if err != nil {
		return fmt.Errorf("failed to get quota: %w", err)
	}
	if rec.PremiumUntil != nil && rec.PremiumUntil.After(now) {
		return nil
	}
	return p.store.IncrementUsage(ctx, userID, Day(now))
}

var ErrInvalidDays = errors.New("days must be positive")

func (p *Policy) Grant(ctx context.Context, userID int64, days int) (time.Time, error) {
	if days <= 0 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}
	return p.store.GrantPremium(ctx, userID, days)
}

func (p *Policy) Revoke(ctx context.Context, userID int64) error {
	return p.store.RevokePremium(ctx, userID)
}
