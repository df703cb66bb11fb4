package core_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/krau/SaveLink-Bot/config"
	"github.com/krau/SaveLink-Bot/core"
	"github.com/krau/SaveLink-Bot/core/delivery"
	"github.com/krau/SaveLink-Bot/core/quota"
	"github.com/krau/SaveLink-Bot/core/retriever"
	"github.com/krau/SaveLink-Bot/core/session"
	"github.com/krau/SaveLink-Bot/pkg/linkkind"
)

type memStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *memStore) GetQuota(_ context.Context, userID int64, day string) (quota.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return quota.Record{UserID: userID, Count: m.counts[fmt.Sprintf("%d/%s", userID, day)]}, nil
}

func (m *memStore) IncrementUsage(_ context.Context, userID int64, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[fmt.Sprintf("%d/%s", userID, day)]++
	return nil
}

func (m *memStore) used(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[fmt.Sprintf("%d/%s", userID, quota.Day(time.Now()))]
}

func (m *memStore) GrantPremium(context.Context, int64, int) (time.Time, error) {
	return time.Time{}, errors.New("not implemented")
}
func (m *memStore) RevokePremium(context.Context, int64) error { return nil }
func (m *memStore) GetSettings(context.Context, int64) (quota.Settings, error) {
	return quota.Settings{}, quota.ErrNotFound
}
func (m *memStore) SetDestination(context.Context, int64, int64) error { return nil }
func (m *memStore) SetCaption(context.Context, int64, string) error    { return nil }
func (m *memStore) SetThumbnail(context.Context, int64, string) error  { return nil }
func (m *memStore) ResetSettings(context.Context, int64) error         { return nil }

type fakeTransport struct {
	mu    sync.Mutex
	media []delivery.Media
	texts []string
	pins  int
}

func (f *fakeTransport) SendMedia(_ context.Context, m delivery.Media) (delivery.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media = append(f.media, m)
	return delivery.Handle{ChatID: m.ChatID, MsgID: 100 + len(f.media)}, nil
}

func (f *fakeTransport) SendText(_ context.Context, chatID int64, _ int, text string) (delivery.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return delivery.Handle{ChatID: chatID, MsgID: len(f.texts)}, nil
}

func (f *fakeTransport) EditStatus(context.Context, delivery.Handle, string) error { return nil }

func (f *fakeTransport) Pin(context.Context, delivery.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins++
	return nil
}

func (f *fakeTransport) Unpin(context.Context, delivery.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins--
	return nil
}

func (f *fakeTransport) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

// fakeRetriever writes a small file named after the URL path. URLs containing "fail"
// fail with no_match and URLs containing "folder" return a two entry listing.
type fakeRetriever struct {
	started chan struct{}
	block   chan struct{}
}

func writeFile(dir, name string) (retriever.SingleFile, error) {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
		return retriever.SingleFile{}, err
	}
	return retriever.SingleFile{Path: p, Name: name, Size: 4}, nil
}

func (f *fakeRetriever) Retrieve(_ context.Context, req retriever.Request) (retriever.Outcome, error) {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}
	switch {
	case strings.Contains(req.URL, "fail"):
		return nil, &retriever.Failure{Reason: retriever.ReasonNoMatch}
	case strings.Contains(req.URL, "folder"):
		return retriever.FolderListing{Name: "share", Entries: []retriever.Entry{
			{Name: "a.pdf", URL: "https://x/a.pdf"},
			{Name: "b.pdf", URL: "https://x/b.pdf"},
		}}, nil
	}
	return writeFile(req.Dir, path.Base(req.URL))
}

func (f *fakeRetriever) FetchEntry(_ context.Context, req retriever.Request, entry retriever.Entry) (retriever.SingleFile, error) {
	return writeFile(req.Dir, entry.Name)
}

type fixture struct {
	engine    *core.Engine
	store     *memStore
	transport *fakeTransport
	root      string
}

func newFixture(t *testing.T, r core.Retriever, mode config.FolderMode, freeDaily int) *fixture {
	t.Helper()
	root := t.TempDir()
	store := &memStore{counts: map[string]int{}}
	policy := quota.NewPolicy(store, nil, quota.Limits{FreeDaily: freeDaily, FreeMax: 1 << 20, PremiumMax: 1 << 30})
	tr := &fakeTransport{}
	engine := core.New(context.Background(), session.NewManager(root), policy, r, delivery.NewDeliverer(tr), core.Options{
		FolderMode:       mode,
		ProgressInterval: time.Millisecond,
	})
	return &fixture{engine: engine, store: store, transport: tr, root: root}
}

func TestSubmitRejectsEmptyAndUnsupported(t *testing.T) {
	fx := newFixture(t, &fakeRetriever{}, config.FolderModeEach, 5)
	origin := core.Origin{UserID: 9, ChatID: 9, MsgID: 1}

	if _, err := fx.engine.Submit(context.Background(), origin, nil); !errors.Is(err, core.ErrNoLinks) {
		t.Fatalf("err = %v; want ErrNoLinks", err)
	}
	res, err := fx.engine.Submit(context.Background(), origin, []string{"https://example.com/page"})
	if !errors.Is(err, core.ErrNoSupported) {
		t.Fatalf("err = %v; want ErrNoSupported", err)
	}
	if res.Unsupported != 1 || res.Supported != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestSubmitDrainsAndCharges(t *testing.T) {
	fx := newFixture(t, &fakeRetriever{}, config.FolderModeEach, 5)
	origin := core.Origin{UserID: 9, ChatID: 9, MsgID: 1}

	res, err := fx.engine.Submit(context.Background(), origin, []string{
		"https://cdn.example.com/a.mkv",
		"https://cdn.example.com/b.pdf",
		"https://example.com/page",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Total != 3 || res.Supported != 2 || res.Unsupported != 1 || res.Added != 2 {
		t.Fatalf("result = %+v", res)
	}
	fx.engine.Wait()

	if n := len(fx.transport.media); n != 2 {
		t.Fatalf("delivered %d files; want 2", n)
	}
	if used := fx.store.used(9); used != 2 {
		t.Fatalf("used = %d; want 2", used)
	}
	summary := fx.transport.last()
	if !strings.Contains(summary, "Successful: 2") || !strings.Contains(summary, "Failed: 0") {
		t.Fatalf("summary = %q", summary)
	}
	if fx.transport.pins != 0 {
		t.Fatalf("status message left pinned")
	}
	if fx.engine.Sessions().Len() != 0 {
		t.Fatalf("idle session not released")
	}
	if _, err := os.Stat(filepath.Join(fx.root, "9")); !os.IsNotExist(err) {
		t.Fatalf("scratch directory should be removed")
	}
}

func TestSubmitQuotaGate(t *testing.T) {
	fx := newFixture(t, &fakeRetriever{}, config.FolderModeEach, 1)
	origin := core.Origin{UserID: 9, ChatID: 9}
	_, err := fx.engine.Submit(context.Background(), origin, []string{
		"https://cdn.example.com/a.mkv",
		"https://cdn.example.com/b.mkv",
	})
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("err = %v; want ErrQuotaExceeded", err)
	}
	fx.engine.Wait()
	if len(fx.transport.media) != 0 {
		t.Fatalf("rejected message must not enqueue anything")
	}
}

func TestFailuresAreNotCharged(t *testing.T) {
	fx := newFixture(t, &fakeRetriever{}, config.FolderModeEach, 5)
	_, err := fx.engine.Submit(context.Background(), core.Origin{UserID: 9, ChatID: 9}, []string{
		"https://cdn.example.com/fail.mkv",
		"https://cdn.example.com/ok.mkv",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	fx.engine.Wait()
	if used := fx.store.used(9); used != 1 {
		t.Fatalf("used = %d; want 1", used)
	}
	summary := fx.transport.last()
	if !strings.Contains(summary, "Failed: 1") || !strings.Contains(summary, "fail.mkv") {
		t.Fatalf("summary = %q", summary)
	}
}

func TestFolderModes(t *testing.T) {
	tests := []struct {
		mode  config.FolderMode
		files []string
		kinds string
	}{
		{config.FolderModeEach, []string{"a.pdf", "b.pdf"}, "Files (2): 📄 2"},
		{config.FolderModeZip, []string{"share.zip"}, "Files (1): 🗜️ 1"},
	}
	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			fx := newFixture(t, &fakeRetriever{}, tc.mode, 5)
			_, err := fx.engine.Submit(context.Background(), core.Origin{UserID: 9, ChatID: 9}, []string{
				"https://www.terabox.com/s/1folder",
			})
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			fx.engine.Wait()
			var names []string
			for _, m := range fx.transport.media {
				names = append(names, m.Name)
			}
			if strings.Join(names, ",") != strings.Join(tc.files, ",") {
				t.Fatalf("delivered %v; want %v", names, tc.files)
			}
			if used := fx.store.used(9); used != 1 {
				t.Fatalf("a folder is one task, used = %d", used)
			}
			summary := fx.transport.last()
			if !strings.Contains(summary, "Total: 1") || !strings.Contains(summary, tc.kinds) {
				t.Fatalf("summary = %q; want one task and %q", summary, tc.kinds)
			}
		})
	}
}

func TestCancelDropsPending(t *testing.T) {
	r := &fakeRetriever{started: make(chan struct{}, 1), block: make(chan struct{})}
	fx := newFixture(t, r, config.FolderModeEach, 5)
	_, err := fx.engine.Submit(context.Background(), core.Origin{UserID: 9, ChatID: 9}, []string{
		"https://cdn.example.com/1.mkv",
		"https://cdn.example.com/2.mkv",
		"https://cdn.example.com/3.mkv",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	<-r.started
	dropped, ok := fx.engine.Cancel(9)
	if !ok || dropped != 2 {
		t.Fatalf("Cancel() = %d, %v; want 2, true", dropped, ok)
	}
	close(r.block)
	fx.engine.Wait()

	if len(fx.transport.media) != 1 {
		t.Fatalf("running item should finish, delivered %d", len(fx.transport.media))
	}
	if summary := fx.transport.last(); !strings.Contains(summary, "Cancelled: 2") {
		t.Fatalf("summary = %q", summary)
	}
	if _, ok := fx.engine.Cancel(9); ok {
		t.Fatalf("nothing left to cancel")
	}
}

func TestRunningTaskCountsAgainstQuota(t *testing.T) {
	r := &fakeRetriever{started: make(chan struct{}, 1), block: make(chan struct{})}
	fx := newFixture(t, r, config.FolderModeEach, 1)
	origin := core.Origin{UserID: 9, ChatID: 9}
	if _, err := fx.engine.Submit(context.Background(), origin, []string{"https://cdn.example.com/a.mkv"}); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	<-r.started

	res, err := fx.engine.Submit(context.Background(), origin, []string{"https://cdn.example.com/b.mkv"})
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("second Submit() error = %v; want ErrQuotaExceeded", err)
	}
	if res.Remaining() != 0 {
		t.Fatalf("Remaining() = %d; want 0", res.Remaining())
	}
	close(r.block)
	fx.engine.Wait()

	if used := fx.store.used(9); used != 1 {
		t.Fatalf("charged %d tasks against a daily limit of 1", used)
	}
	if len(fx.transport.media) != 1 {
		t.Fatalf("delivered %d files; want 1", len(fx.transport.media))
	}
}

func TestBatchTextSummary(t *testing.T) {
	fx := newFixture(t, &fakeRetriever{}, config.FolderModeEach, 10)
	text := `https://cdn.example.com/movie.mkv
ftp://files.example.com/old.iso
https://cdn.example.com/paper.pdf
just some words, no link
https://cdn.example.com/fail.zip`

	links := linkkind.ExtractLinks(text)
	res, err := fx.engine.Submit(context.Background(), core.Origin{UserID: 9, ChatID: 9}, links)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Added != 3 {
		t.Fatalf("added %d tasks; want 3", res.Added)
	}
	fx.engine.Wait()

	summary := fx.transport.last()
	for _, want := range []string{"Successful: 2", "Failed: 1", "Total: 3", "Files (2): 🎬 1 · 📄 1", "fail.zip"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
