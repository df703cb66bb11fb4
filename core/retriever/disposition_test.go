package retriever

import "testing"

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"quoted ascii", `attachment; filename="a.mp4"`, "a.mp4"},
		{"unquoted", `attachment; filename=report.pdf`, "report.pdf"},
		{"inline only", `inline`, ""},
		{"empty", ``, ""},
		{"rfc5987", `attachment; filename*=UTF-8''%E6%B5%8B%E8%AF%95.zip`, "测试.zip"},
		{"rfc5987 wins over plain", `attachment; filename="fallback.zip"; filename*=UTF-8''%E4%B8%AD%E6%96%87.zip`, "中文.zip"},
		{"mime encoded word", `attachment; filename="=?UTF-8?B?5rWL6K+VLnppcA==?="`, "测试.zip"},
		{"percent encoded plain", `attachment; filename="%E6%B5%8B%E8%AF%95.zip"`, "测试.zip"},
		{"broken header falls back", `attachment; filename="my file [1].mkv"; size=oops=bad`, "my file [1].mkv"},
		{"single quoted fallback", `attachment;; filename='x.rar'`, "x.rar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFilename(tt.header); got != tt.expected {
				t.Errorf("parseFilename(%q) = %q, want %q", tt.header, got, tt.expected)
			}
		})
	}
}

func TestParseFilenameGBK(t *testing.T) {
	// "下载.zip" in GBK
	gbk := string([]byte{0xcf, 0xc2, 0xd4, 0xd8}) + ".zip"
	if got := decodeFilenameParam(gbk); got != "下载.zip" {
		t.Errorf("decodeFilenameParam(gbk) = %q, want 下载.zip", got)
	}
}

func TestParseFilenameFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"simple filename", "https://example.com/files/document.pdf", "document.pdf"},
		{"encoded characters", "https://example.com/files/%E6%B5%8B%E8%AF%95.zip", "测试.zip"},
		{"query string", "https://example.com/files/image.png?token=abc123", "image.png"},
		{"port", "https://example.com:8080/downloads/archive.tar.gz", "archive.tar.gz"},
		{"empty path", "https://example.com", ""},
		{"root path only", "https://example.com/", ""},
		{"spaces encoded", "https://example.com/my%20file%20name.pdf", "my file name.pdf"},
		{"invalid URL", "://invalid-url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFilenameFromURL(tt.url); got != tt.expected {
				t.Errorf("parseFilenameFromURL(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}
