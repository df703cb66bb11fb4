package retriever

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStreamer() *Streamer {
	return NewStreamer(http.DefaultClient, 64, "test-agent")
}

func assertReason(t *testing.T, err error, want Reason) *Failure {
	t.Helper()
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("err = %v; want *Failure", err)
	}
	if f.Reason != want {
		t.Fatalf("reason = %s; want %s (err %v)", f.Reason, want, err)
	}
	return f
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("dir has %d leftover entries", len(entries))
	}
}

func TestStreamDispositionAndCollision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Disposition", `attachment; filename="a.mp4"`)
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("not really a video but bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := newTestStreamer()
	req := Request{URL: srv.URL + "/x", Dir: dir}

	var reported int64
	req.OnProgress = func(tr Transfer) { reported = tr.Done }
	first, err := s.Stream(context.Background(), req, target{URL: srv.URL + "/x"})
	if err != nil {
		t.Fatalf("first stream error = %v", err)
	}
	if first.Name != "a.mp4" || first.Path != filepath.Join(dir, "a.mp4") {
		t.Fatalf("first = %+v", first)
	}
	if first.MIME != "video/mp4" || reported != first.Size {
		t.Fatalf("mime = %q, reported = %d, size = %d", first.MIME, reported, first.Size)
	}

	second, err := s.Stream(context.Background(), req, target{URL: srv.URL + "/x"})
	if err != nil {
		t.Fatalf("second stream error = %v", err)
	}
	if second.Name != "a_1.mp4" {
		t.Fatalf("second name = %q; want a_1.mp4", second.Name)
	}
}

func TestStreamNameFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 minimal"))
	}))
	defer srv.Close()

	tests := []struct {
		name string
		url  string
		hint string
		want string
	}{
		{"hint wins over path", srv.URL + "/files/ignored.bin", "report", "report.pdf"},
		{"url path", srv.URL + "/files/doc%20one.pdf", "", "doc one.pdf"},
		{"fallback name", srv.URL + "/", "", "downloaded_file.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			f, err := newTestStreamer().Stream(context.Background(), Request{Dir: dir}, target{URL: tt.url, NameHint: tt.hint})
			if err != nil {
				t.Fatalf("Stream() error = %v", err)
			}
			if f.Name != tt.want {
				t.Fatalf("name = %q; want %q", f.Name, tt.want)
			}
		})
	}
}

func TestStreamRejectsHTML(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"declared", "text/html; charset=utf-8"},
		{"sniffed", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte("<!DOCTYPE html><html><head><title>login</title></head><body>sign in</body></html>"))
			}))
			defer srv.Close()
			dir := t.TempDir()
			_, err := newTestStreamer().Stream(context.Background(), Request{Dir: dir}, target{URL: srv.URL + "/v.mp4"})
			assertReason(t, err, ReasonHTMLPage)
			assertEmptyDir(t, dir)
		})
	}
}

func TestStreamEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	dir := t.TempDir()
	_, err := newTestStreamer().Stream(context.Background(), Request{Dir: dir}, target{URL: srv.URL + "/a.zip"})
	assertReason(t, err, ReasonEmptyBody)
	assertEmptyDir(t, dir)
}

func TestStreamHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()
	_, err := newTestStreamer().Stream(context.Background(), Request{Dir: t.TempDir()}, target{URL: srv.URL})
	f := assertReason(t, err, ReasonHTTPStatus)
	if f.Status != http.StatusNotFound {
		t.Fatalf("status = %d", f.Status)
	}
}

func TestStreamTooLargeDeclared(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()
	dir := t.TempDir()
	_, err := newTestStreamer().Stream(context.Background(), Request{Dir: dir, MaxSize: 10}, target{URL: srv.URL + "/a.bin"})
	f := assertReason(t, err, ReasonTooLarge)
	if f.Limit != 10 || !f.Permanent() {
		t.Fatalf("failure = %+v", f)
	}
	assertEmptyDir(t, dir)
}

func TestStreamTooLargeCounted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// flushing forces a chunked response without content length
		w.Write([]byte(strings.Repeat("y", 50)))
		w.(http.Flusher).Flush()
		w.Write([]byte(strings.Repeat("y", 500)))
	}))
	defer srv.Close()
	dir := t.TempDir()
	_, err := newTestStreamer().Stream(context.Background(), Request{Dir: dir, MaxSize: 100}, target{URL: srv.URL + "/a.bin"})
	assertReason(t, err, ReasonTooLarge)
	assertEmptyDir(t, dir)
}

func TestStreamCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestStreamer().Stream(ctx, Request{Dir: t.TempDir()}, target{URL: srv.URL})
	assertReason(t, err, ReasonCancelled)
}
