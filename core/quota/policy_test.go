package quota

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type memStore struct {
	counts  map[string]int
	premium map[int64]*time.Time
	revoked []int64
	now     func() time.Time
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{counts: map[string]int{}, premium: map[int64]*time.Time{}, now: now}
}

func key(userID int64, day string) string {
	return fmt.Sprintf("%d/%s", userID, day)
}

func (m *memStore) GetQuota(_ context.Context, userID int64, day string) (Record, error) {
	return Record{UserID: userID, Count: m.counts[key(userID, day)], PremiumUntil: m.premium[userID]}, nil
}

func (m *memStore) IncrementUsage(_ context.Context, userID int64, day string) error {
	m.counts[key(userID, day)]++
	return nil
}

func (m *memStore) GrantPremium(_ context.Context, userID int64, days int) (time.Time, error) {
	until := m.now().Add(time.Duration(days) * 24 * time.Hour)
	m.premium[userID] = &until
	return until, nil
}

func (m *memStore) RevokePremium(_ context.Context, userID int64) error {
	delete(m.premium, userID)
	m.revoked = append(m.revoked, userID)
	return nil
}

func (m *memStore) GetSettings(context.Context, int64) (Settings, error) { return Settings{}, nil }
func (m *memStore) SetDestination(context.Context, int64, int64) error   { return nil }
func (m *memStore) SetCaption(context.Context, int64, string) error      { return nil }
func (m *memStore) SetThumbnail(context.Context, int64, string) error    { return nil }
func (m *memStore) ResetSettings(context.Context, int64) error           { return nil }

var limits = Limits{FreeDaily: 5, FreeMax: 200 << 20, PremiumMax: 4 << 30, FreeSpeed: 1 << 20}

func newTestPolicy() (*Policy, *memStore, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := newMemStore(clock)
	return NewPolicy(store, []int64{1}, limits).WithClock(clock), store, &now
}

func TestStatusTiers(t *testing.T) {
	p, store, _ := newTestPolicy()
	ctx := context.Background()

	owner, _ := p.Status(ctx, 1)
	if owner.Tier != TierOwner || owner.Remaining != Unlimited || owner.MaxSize != limits.PremiumMax {
		t.Fatalf("owner = %+v", owner)
	}

	store.IncrementUsage(ctx, 2, Day(p.now()))
	free, _ := p.Status(ctx, 2)
	if free.Tier != TierFree || free.Remaining != 4 || free.MaxSize != limits.FreeMax || free.SpeedLimit != limits.FreeSpeed {
		t.Fatalf("free = %+v", free)
	}

	if _, err := p.Grant(ctx, 3, 30); err != nil {
		t.Fatal(err)
	}
	prem, _ := p.Status(ctx, 3)
	if prem.Tier != TierPremium || prem.Remaining != Unlimited || prem.SpeedLimit != 0 {
		t.Fatalf("premium = %+v", prem)
	}
}

func TestExpiredPremiumIsClearedLazily(t *testing.T) {
	p, store, now := newTestPolicy()
	ctx := context.Background()
	p.Grant(ctx, 5, 1)
	*now = now.Add(48 * time.Hour)

	st, err := p.Status(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if st.Tier != TierFree || st.Remaining != 5 {
		t.Fatalf("status = %+v", st)
	}
	if len(store.revoked) != 1 || store.revoked[0] != 5 {
		t.Fatalf("revoked = %v", store.revoked)
	}
}

func TestCanSubmit(t *testing.T) {
	tests := []struct {
		name    string
		used    int
		n       int
		pending int
		want    bool
	}{
		{"within quota", 0, 5, 0, true},
		{"over quota", 0, 6, 0, false},
		{"pending counts", 2, 2, 2, false},
		{"exactly remaining", 2, 1, 2, true},
		{"exhausted", 5, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, store, _ := newTestPolicy()
			ctx := context.Background()
			for i := 0; i < tt.used; i++ {
				store.IncrementUsage(ctx, 9, Day(p.now()))
			}
			ok, _, err := p.CanSubmit(ctx, 9, tt.n, tt.pending)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.want {
				t.Fatalf("CanSubmit() = %v; want %v", ok, tt.want)
			}
		})
	}
}

func TestPremiumSkipsGateAndCharge(t *testing.T) {
	p, store, _ := newTestPolicy()
	ctx := context.Background()
	p.Grant(ctx, 4, 7)
	if ok, _, _ := p.CanSubmit(ctx, 4, 1000, 50); !ok {
		t.Fatal("premium must pass the gate")
	}
	p.Charge(ctx, 4)
	p.Charge(ctx, 1)
	if n := store.counts[key(4, Day(p.now()))] + store.counts[key(1, Day(p.now()))]; n != 0 {
		t.Fatalf("premium and owner charges = %d; want 0", n)
	}
}

func TestChargeCountsPerDay(t *testing.T) {
	p, _, now := newTestPolicy()
	ctx := context.Background()
	p.Charge(ctx, 2)
	p.Charge(ctx, 2)
	st, _ := p.Status(ctx, 2)
	if st.Used != 2 || st.Remaining != 3 {
		t.Fatalf("status = %+v", st)
	}
	*now = now.Add(24 * time.Hour)
	st, _ = p.Status(ctx, 2)
	if st.Used != 0 || st.Remaining != 5 {
		t.Fatalf("next day status = %+v", st)
	}
}

func TestGrantRejectsBadDays(t *testing.T) {
	p, _, _ := newTestPolicy()
	if _, err := p.Grant(context.Background(), 2, 0); err == nil {
		t.Fatal("Grant(0) should fail")
	}
}
