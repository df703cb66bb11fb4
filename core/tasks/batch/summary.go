package batch

import (
	"fmt"
	"strings"
	"sync"

	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/common/utils/strutil"
	"github.com/krau/SaveLink-Bot/pkg/enums/filekind"
)

const maxFailureLines = 20

type FailureLine struct {
	URL    string
	Reason string
}

// Summary tallies the outcome of every task drained in one run. Total, Success,
// Failed and Cancelled count tasks; Files and Kinds count delivered files, so a
// folder link is one task with several files.
type Summary struct {
	mu        sync.Mutex
	Total     int
	Success   int
	Failed    int
	Cancelled int
	Files     int
	Kinds     map[filekind.FileKind]int
	Failures  []FailureLine
}

func NewSummary() *Summary {
	return &Summary{Kinds: make(map[filekind.FileKind]int)}
}

// AddFile records one delivered file.
func (s *Summary) AddFile(kind filekind.FileKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files++
	s.Kinds[kind]++
}

func (s *Summary) AddSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Total++
	s.Success++
}

func (s *Summary) AddFailure(url, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Total++
	s.Failed++
	s.Failures = append(s.Failures, FailureLine{URL: url, Reason: reason})
}

// AddFailureLine lists a failed part of a task without counting the task itself.
func (s *Summary) AddFailureLine(url, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failures = append(s.Failures, FailureLine{URL: url, Reason: reason})
}

func (s *Summary) AddCancelled(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Total += n
	s.Cancelled += n
}

// KindsLine renders the file kind histogram in a fixed order, e.g. "🎬 2 · 📄 1".
func (s *Summary) KindsLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]string, 0, len(s.Kinds))
	for _, k := range filekind.All {
		if n := s.Kinds[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", k.Emoji(), n))
		}
	}
	if len(parts) == 0 {
		return i18n.T(i18nk.BotMsgSummaryInfoNone)
	}
	return strings.Join(parts, " · ")
}

func (s *Summary) Text() string {
	kinds := s.KindsLine()
	s.mu.Lock()
	defer s.mu.Unlock()
	var sb strings.Builder
	sb.WriteString(i18n.T(i18nk.BotMsgSummaryInfoText, map[string]any{
		"Success":   s.Success,
		"Failed":    s.Failed,
		"Cancelled": s.Cancelled,
		"Total":     s.Total,
		"Files":     s.Files,
		"Kinds":     kinds,
	}))
	for i, f := range s.Failures {
		if i == maxFailureLines {
			fmt.Fprintf(&sb, "\n... +%d", len(s.Failures)-maxFailureLines)
			break
		}
		sb.WriteString("\n")
		sb.WriteString(i18n.T(i18nk.BotMsgSummaryInfoFailedLine, map[string]any{
			"URL":    strutil.Truncate(f.URL, 60),
			"Reason": f.Reason,
		}))
	}
	return sb.String()
}
