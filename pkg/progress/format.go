package progress

import (
	"fmt"
	"strings"
	"time"
)

const (
	BarWidth   = 20
	barFilled  = "●"
	barEmpty   = "○"
	NameMaxLen = 50
)

// Percent returns 0 when total is unknown and never more than 100.
func Percent(done, total int64) float64 {
	if total <= 0 || done <= 0 {
		return 0
	}
	p := float64(done) * 100 / float64(total)
	if p > 100 {
		return 100
	}
	return p
}

func Bar(done, total int64, width int) string {
	if width <= 0 {
		width = BarWidth
	}
	filled := int(Percent(done, total) * float64(width) / 100)
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
}

// Speed is in bytes per second.
func Speed(done int64, elapsed time.Duration) float64 {
	if elapsed <= 0 || done <= 0 {
		return 0
	}
	return float64(done) / elapsed.Seconds()
}

// ETA is 0 when the total is unknown or nothing is moving.
func ETA(done, total int64, speed float64) time.Duration {
	if total <= 0 || speed <= 0 || done >= total {
		return 0
	}
	return time.Duration(float64(total-done) / speed * float64(time.Second))
}

func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	case bytes < 0:
		return "0 B"
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm, %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh, %dm", secs/3600, (secs%3600)/60)
	}
}

// Snapshot is a formatted view of one transfer.
type Snapshot struct {
	Name    string
	Done    string
	Size    string
	Percent string
	Bar     string
	Speed   string
	ETA     string
}

func Snap(name string, done, total int64, elapsed time.Duration) Snapshot {
	speed := Speed(done, elapsed)
	size := "?"
	if total > 0 {
		size = FormatSize(total)
	}
	runes := []rune(name)
	if len(runes) > NameMaxLen {
		name = string(runes[:NameMaxLen-3]) + "..."
	}
	return Snapshot{
		Name:    name,
		Done:    FormatSize(done),
		Size:    size,
		Percent: fmt.Sprintf("%.1f", Percent(done, total)),
		Bar:     Bar(done, total, BarWidth),
		Speed:   FormatSize(int64(speed)),
		ETA:     FormatDuration(ETA(done, total, speed)),
	}
}

// Map exposes the snapshot as template data.
func (s Snapshot) Map() map[string]any {
	return map[string]any{
		"Name":    s.Name,
		"Done":    s.Done,
		"Size":    s.Size,
		"Percent": s.Percent,
		"Bar":     s.Bar,
		"Speed":   s.Speed,
		"ETA":     s.ETA,
	}
}
