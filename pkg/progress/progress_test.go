package progress_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/krau/SaveLink-Bot/pkg/progress"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestThrottleShouldEmit(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	th := progress.NewThrottleWithClock(8*time.Second, clock.now)

	if !th.ShouldEmit() {
		t.Fatal("first call should emit")
	}
	for i := 0; i < 7; i++ {
		clock.advance(time.Second)
		if th.ShouldEmit() {
			t.Fatalf("call %ds after emit should not emit", i+1)
		}
	}
	clock.advance(999 * time.Millisecond)
	if th.ShouldEmit() {
		t.Fatal("call just before the interval should not emit")
	}
	clock.advance(time.Millisecond)
	if !th.ShouldEmit() {
		t.Fatal("call after the interval should emit")
	}
	if th.ShouldEmit() {
		t.Fatal("immediate second call should not emit")
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		done, total int64
		want        float64
	}{
		{0, 100, 0},
		{50, 100, 50},
		{100, 100, 100},
		{150, 100, 100},
		{10, 0, 0},
		{10, -1, 0},
	}
	for _, tc := range tests {
		if got := progress.Percent(tc.done, tc.total); got != tc.want {
			t.Errorf("Percent(%d, %d) = %v; want %v", tc.done, tc.total, got, tc.want)
		}
	}
}

func TestBar(t *testing.T) {
	bar := progress.Bar(50, 100, 20)
	if utf8.RuneCountInString(bar) != 20 {
		t.Fatalf("bar width = %d", utf8.RuneCountInString(bar))
	}
	if strings.Count(bar, "●") != 10 || strings.Count(bar, "○") != 10 {
		t.Fatalf("Bar(50,100) = %q", bar)
	}
	if got := progress.Bar(0, 0, 20); got != strings.Repeat("○", 20) {
		t.Fatalf("Bar on unknown total = %q", got)
	}
	if got := progress.Bar(100, 100, 20); got != strings.Repeat("●", 20) {
		t.Fatalf("Bar on done = %q", got)
	}
}

func TestSpeedAndETA(t *testing.T) {
	speed := progress.Speed(1000, 2*time.Second)
	if speed != 500 {
		t.Fatalf("Speed = %v; want 500", speed)
	}
	if got := progress.ETA(1000, 2000, speed); got != 2*time.Second {
		t.Fatalf("ETA = %v; want 2s", got)
	}
	if got := progress.ETA(1000, 0, speed); got != 0 {
		t.Fatalf("ETA with unknown total = %v; want 0", got)
	}
	if got := progress.ETA(1000, 2000, 0); got != 0 {
		t.Fatalf("ETA with zero speed = %v; want 0", got)
	}
	if got := progress.Speed(1000, 0); got != 0 {
		t.Fatalf("Speed with zero elapsed = %v; want 0", got)
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:                      "0 B",
		512:                    "512 B",
		1536:                   "1.50 KB",
		5 * 1024 * 1024:        "5.00 MB",
		3 * 1024 * 1024 * 1024: "3.00 GB",
	}
	for in, want := range tests {
		if got := progress.FormatSize(in); got != want {
			t.Errorf("FormatSize(%d) = %q; want %q", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		0:                                "0s",
		45 * time.Second:                 "45s",
		125 * time.Second:                "2m, 5s",
		2*time.Hour + 15*time.Minute + 3: "2h, 15m",
		-5 * time.Second:                 "0s",
	}
	for in, want := range tests {
		if got := progress.FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%v) = %q; want %q", in, got, want)
		}
	}
}

func TestSnapTruncatesName(t *testing.T) {
	s := progress.Snap(strings.Repeat("n", 80)+".mp4", 10, 0, time.Second)
	if utf8.RuneCountInString(s.Name) != progress.NameMaxLen || !strings.HasSuffix(s.Name, "...") {
		t.Fatalf("Name = %q", s.Name)
	}
	if s.Size != "?" || s.ETA != "0s" {
		t.Fatalf("unknown total snapshot = %+v", s)
	}
}
