package linkkind_test

import (
	"slices"
	"testing"

	"github.com/krau/SaveLink-Bot/pkg/linkkind"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want linkkind.Kind
	}{
		{"https://drive.google.com/file/d/1AbC_dEf/view?usp=sharing", linkkind.KindDrive},
		{"https://docs.google.com/uc?id=1AbC", linkkind.KindDrive},
		{"https://drive.usercontent.google.com/download?id=1AbC&export=download", linkkind.KindDrive},
		{"https://storage.googleapis.com/bucket/file.bin", linkkind.KindDrive},
		{"https://drive.google.com/file/d/x/video.mp4", linkkind.KindDrive},
		{"https://www.terabox.com/s/1abcDEF", linkkind.KindLocker},
		{"https://teraboxapp.com/s/1abc", linkkind.KindLocker},
		{"https://1024terabox.com/s/1abc", linkkind.KindLocker},
		{"https://www.terabox.app/sharing/link?surl=abc", linkkind.KindLocker},
		{"http://momerybox.com/s/1x", linkkind.KindLocker},
		{"https://teraboxlink.com/s/1x", linkkind.KindLocker},
		{"https://cdn.example.com/files/movie.MP4", linkkind.KindDirect},
		{"https://example.com/a/b/archive.zip?token=1", linkkind.KindDirect},
		{"http://example.com/app.apk", linkkind.KindDirect},
		{"https://example.com/photo.jpeg", linkkind.KindDirect},
		{"https://example.com/page.html", linkkind.KindUnsupported},
		{"https://example.com/", linkkind.KindUnsupported},
		{"ftp://example.com/movie.mp4", linkkind.KindUnsupported},
		{"not a url", linkkind.KindUnsupported},
		{"", linkkind.KindUnsupported},
		{"https://notterabox.com.evil.org/s/1", linkkind.KindUnsupported},
		{"https://fakedrive.google.com.evil.org/file/d/1", linkkind.KindUnsupported},
	}
	for _, tc := range tests {
		if got := linkkind.Classify(tc.url); got != tc.want {
			t.Errorf("Classify(%q) = %v; want %v", tc.url, got, tc.want)
		}
	}
}

func TestClassifyAllDomains(t *testing.T) {
	for _, h := range linkkind.DriveHosts {
		if got := linkkind.Classify("https://" + h + "/x"); got != linkkind.KindDrive {
			t.Errorf("drive host %s classified as %v", h, got)
		}
	}
	for _, h := range linkkind.LockerHosts {
		if got := linkkind.Classify("https://www." + h + "/s/1x"); got != linkkind.KindLocker {
			t.Errorf("locker host %s classified as %v", h, got)
		}
	}
	for _, ext := range linkkind.DirectExts {
		if got := linkkind.Classify("https://files.example.net/f" + ext); got != linkkind.KindDirect {
			t.Errorf("extension %s classified as %v", ext, got)
		}
	}
}

func TestExtractLinks(t *testing.T) {
	text := `first https://example.com/a.mp4, then
	(https://www.terabox.com/s/1abc) and junk htp:/broken www.nolink.com
	https://example.com/a.mp4 again`
	got := linkkind.ExtractLinks(text)
	want := []string{"https://example.com/a.mp4", "https://www.terabox.com/s/1abc"}
	if !slices.Equal(got, want) {
		t.Fatalf("ExtractLinks() = %v; want %v", got, want)
	}
}

func TestPartition(t *testing.T) {
	sup, unsup := linkkind.Partition([]string{
		"https://example.com/a.mp4",
		"https://example.com/page",
		"https://drive.google.com/file/d/1/view",
	})
	if len(sup) != 2 || len(unsup) != 1 || unsup[0] != "https://example.com/page" {
		t.Fatalf("Partition() = %v, %v", sup, unsup)
	}
}
