package strutil_test

import (
	"testing"

	"github.com/krau/SaveLink-Bot/common/utils/strutil"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"文件名很长很长", 5, "文件..."},
		{"abcdef", 2, "ab"},
	}
	for _, tc := range tests {
		if got := strutil.Truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q; want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestHashString(t *testing.T) {
	if strutil.HashString("a") == strutil.HashString("b") {
		t.Fatal("different inputs should hash differently")
	}
	if len(strutil.HashString("abc")) != 32 {
		t.Fatal("md5 hex should be 32 chars")
	}
}
