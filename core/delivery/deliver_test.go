package delivery_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/krau/SaveLink-Bot/core/delivery"
	"github.com/krau/SaveLink-Bot/core/quota"
	"github.com/krau/SaveLink-Bot/core/retriever"
	"github.com/krau/SaveLink-Bot/pkg/enums/filekind"
)

type fakeTransport struct {
	mu       sync.Mutex
	media    []delivery.Media
	texts    []string
	failFor  map[delivery.Shape]bool
	thumbSaw []bool
	uploads  int
}

func (f *fakeTransport) SendMedia(_ context.Context, m delivery.Media) (delivery.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media = append(f.media, m)
	thumbOK := false
	if m.Thumb != "" {
		_, err := os.Stat(m.Thumb)
		thumbOK = err == nil
	}
	f.thumbSaw = append(f.thumbSaw, thumbOK)
	if m.Upload.Load() == nil {
		f.uploads++
		m.Upload.Store(m.Path)
	}
	if f.failFor[m.Shape] {
		return delivery.Handle{}, errors.New("rejected")
	}
	return delivery.Handle{ChatID: m.ChatID, MsgID: len(f.media)}, nil
}

func (f *fakeTransport) SendText(_ context.Context, chatID int64, _ int, text string) (delivery.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return delivery.Handle{ChatID: chatID, MsgID: 1}, nil
}

func (f *fakeTransport) EditStatus(context.Context, delivery.Handle, string) error { return nil }
func (f *fakeTransport) Pin(context.Context, delivery.Handle) error                { return nil }
func (f *fakeTransport) Unpin(context.Context, delivery.Handle) error              { return nil }

type fakeThumbnailer struct {
	calls int
}

func (f *fakeThumbnailer) Thumbnail(_ context.Context, _, dst string) error {
	f.calls++
	return os.WriteFile(dst, []byte("jpeg"), 0o644)
}

type fakeMirror struct {
	keys []string
	err  error
}

func (f *fakeMirror) Put(_ context.Context, _ int64, localPath, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := os.Stat(localPath); err != nil {
		return "", err
	}
	f.keys = append(f.keys, "mirror/"+name)
	return "mirror/" + name, nil
}

func writeFile(t *testing.T, name string, size int) retriever.SingleFile {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, bytes.Repeat([]byte("x"), size), 0o644); err != nil {
		t.Fatal(err)
	}
	return retriever.SingleFile{Path: p, Name: name, Size: int64(size)}
}

func TestPickShape(t *testing.T) {
	tests := []struct {
		kind filekind.FileKind
		size int64
		want delivery.Shape
	}{
		{filekind.Video, 100, delivery.ShapeVideo},
		{filekind.Audio, 100, delivery.ShapeAudio},
		{filekind.Image, 1 << 20, delivery.ShapePhoto},
		{filekind.Image, 11 << 20, delivery.ShapeDocument},
		{filekind.PDF, 100, delivery.ShapeDocument},
		{filekind.Archive, 100, delivery.ShapeDocument},
	}
	for _, tc := range tests {
		if got := delivery.PickShape(tc.kind, tc.size); got != tc.want {
			t.Errorf("PickShape(%s, %d) = %s; want %s", tc.kind, tc.size, got, tc.want)
		}
	}
}

func TestRenderCaption(t *testing.T) {
	got := delivery.RenderCaption("{filename} [{ext}] {size}", "movie.mkv", 2048)
	if got != "movie.mkv [mkv] 2.00 KB" {
		t.Fatalf("RenderCaption() = %q", got)
	}
	def := delivery.RenderCaption("", "movie.mkv", 2048)
	if !strings.Contains(def, "movie.mkv") || !strings.Contains(def, "2.00 KB") {
		t.Fatalf("default caption = %q", def)
	}
	long := delivery.RenderCaption(strings.Repeat("x", 2000), "a.mp4", 1)
	if n := len([]rune(long)); n != 1024 {
		t.Fatalf("caption length = %d; want 1024", n)
	}
}

func TestDeliverPhotoRemovesFile(t *testing.T) {
	tr := &fakeTransport{}
	mirror := &fakeMirror{}
	d := delivery.NewDeliverer(tr, delivery.WithMirror(mirror), delivery.WithLogChannel(-1001))
	file := writeFile(t, "pic.jpg", 128)

	res, err := d.Deliver(context.Background(), delivery.Item{UserID: 7, URL: "https://x/pic.jpg", File: file, ChatID: 7})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if res.Shape != delivery.ShapePhoto || res.Kind != filekind.Image {
		t.Fatalf("result = %+v", res)
	}
	if res.MirrorKey != "mirror/pic.jpg" {
		t.Fatalf("mirror key = %q", res.MirrorKey)
	}
	if _, err := os.Stat(file.Path); !os.IsNotExist(err) {
		t.Fatalf("file should be removed")
	}
	if len(tr.texts) != 1 || !strings.Contains(tr.texts[0], "pic.jpg") {
		t.Fatalf("log channel texts = %v", tr.texts)
	}
}

func TestDeliverFallsBackToDocument(t *testing.T) {
	tr := &fakeTransport{failFor: map[delivery.Shape]bool{delivery.ShapeVideo: true}}
	thumbs := &fakeThumbnailer{}
	d := delivery.NewDeliverer(tr, delivery.WithThumbnailer(thumbs))
	file := writeFile(t, "clip.mkv", 256)

	res, err := d.Deliver(context.Background(), delivery.Item{UserID: 1, File: file, ChatID: 1})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if res.Shape != delivery.ShapeDocument {
		t.Fatalf("shape = %s; want document", res.Shape)
	}
	if len(tr.media) != 2 || tr.media[0].Shape != delivery.ShapeVideo {
		t.Fatalf("sends = %d", len(tr.media))
	}
	if tr.uploads != 1 {
		t.Fatalf("file uploaded %d times; the document retry should reuse the first upload", tr.uploads)
	}
	if thumbs.calls != 1 || !tr.thumbSaw[0] {
		t.Fatalf("thumbnail calls = %d, present = %v", thumbs.calls, tr.thumbSaw)
	}
	if _, err := os.Stat(file.Path + ".thumb.jpg"); !os.IsNotExist(err) {
		t.Fatalf("generated thumbnail should be removed")
	}
	if len(tr.texts) != 0 {
		t.Fatalf("no log channel configured, got %v", tr.texts)
	}
}

func TestDeliverUserThumbnail(t *testing.T) {
	tr := &fakeTransport{}
	thumbs := &fakeThumbnailer{}
	d := delivery.NewDeliverer(tr, delivery.WithThumbnailer(thumbs))
	thumb := filepath.Join(t.TempDir(), "thumb.jpg")
	if err := os.WriteFile(thumb, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	file := writeFile(t, "clip.mkv", 64)

	_, err := d.Deliver(context.Background(), delivery.Item{
		File:     file,
		Settings: quota.Settings{ThumbnailPath: thumb, CaptionTemplate: "{filename}"},
	})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if thumbs.calls != 0 {
		t.Fatalf("user thumbnail should skip generation")
	}
	if tr.media[0].Thumb != thumb || tr.media[0].Caption != "clip.mkv" {
		t.Fatalf("media = %+v", tr.media[0])
	}
	if _, err := os.Stat(thumb); err != nil {
		t.Fatalf("user thumbnail must be kept: %v", err)
	}
}

func TestDeliverFailureStillRemovesFile(t *testing.T) {
	tr := &fakeTransport{failFor: map[delivery.Shape]bool{delivery.ShapeDocument: true}}
	d := delivery.NewDeliverer(tr, delivery.WithMirror(&fakeMirror{}))
	file := writeFile(t, "notes.pdf", 32)

	if _, err := d.Deliver(context.Background(), delivery.Item{File: file}); err == nil {
		t.Fatalf("Deliver() should fail")
	}
	if len(tr.media) != 1 {
		t.Fatalf("document shape should not be retried, sends = %d", len(tr.media))
	}
	if _, err := os.Stat(file.Path); !os.IsNotExist(err) {
		t.Fatalf("file should be removed after failure")
	}
}

func TestDeliverMirrorErrorIsNotFatal(t *testing.T) {
	tr := &fakeTransport{}
	d := delivery.NewDeliverer(tr, delivery.WithMirror(&fakeMirror{err: errors.New("down")}))
	file := writeFile(t, "a.zip", 16)
	res, err := d.Deliver(context.Background(), delivery.Item{File: file})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if res.MirrorKey != "" {
		t.Fatalf("mirror key = %q", res.MirrorKey)
	}
}
