package tgutil_test

import (
	"testing"

	"github.com/krau/SaveLink-Bot/common/utils/tgutil"
)

func TestStripChannelPrefix(t *testing.T) {
	tests := []struct {
		in, want int64
	}{
		{-1001234567890, 1234567890},
		{123456, 123456},
		{-42, -42},
	}
	for _, tc := range tests {
		if got := tgutil.StripChannelPrefix(tc.in); got != tc.want {
			t.Errorf("StripChannelPrefix(%d) = %d; want %d", tc.in, got, tc.want)
		}
	}
}
