// Package linkkind classifies links into the supported source kinds.
package linkkind

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
)

type Kind string

const (
	KindUnsupported Kind = "unsupported"
	// Google Drive style hosts, resolved by following redirects
	KindDrive Kind = "drive"
	// TeraBox style lockers, resolved by probing and scraping
	KindLocker Kind = "locker"
	// any other host serving a known file extension
	KindDirect Kind = "direct"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) Supported() bool {
	return k == KindDrive || k == KindLocker || k == KindDirect
}

var DriveHosts = []string{
	"drive.google.com",
	"docs.google.com",
	"drive.usercontent.google.com",
	"storage.googleapis.com",
}

var LockerHosts = []string{
	"terabox.com",
	"teraboxapp.com",
	"1024terabox.com",
	"terabox.app",
	"1024tera.com",
	"gcloud.life",
	"momerybox.com",
	"teraboxlink.com",
	"terasharelink.com",
	"freeterabox.com",
	"nephobox.com",
	"4funbox.com",
	"mirrobox.com",
}

var DirectExts = []string{
	".mp4", ".mkv", ".avi", ".mov", ".webm",
	".pdf", ".zip", ".rar", ".7z",
	".mp3", ".m4a", ".flac",
	".jpg", ".jpeg", ".png", ".gif", ".webp",
	".apk",
}

func hostIn(host string, hosts []string) bool {
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Classify never touches the network.
func Classify(raw string) Kind {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return KindUnsupported
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return KindUnsupported
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return KindUnsupported
	}
	switch {
	case hostIn(host, DriveHosts):
		return KindDrive
	case hostIn(host, LockerHosts):
		return KindLocker
	}
	p := strings.ToLower(u.Path)
	for _, ext := range DirectExts {
		if strings.HasSuffix(p, ext) {
			return KindDirect
		}
	}
	return KindUnsupported
}

var linkRe = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")

// ExtractLinks returns the unique http(s) links found in text, in order of appearance.
func ExtractLinks(text string) []string {
	matches := linkRe.FindAllString(text, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:!?)'")
		if m == "" {
			continue
		}
		if _, err := url.Parse(m); err != nil {
			continue
		}
		links = append(links, m)
	}
	return slice.Unique(links)
}

// Partition splits links into supported and unsupported ones, keeping order.
func Partition(links []string) (supported []string, unsupported []string) {
	for _, l := range links {
		if Classify(l).Supported() {
			supported = append(supported, l)
		} else {
			unsupported = append(unsupported, l)
		}
	}
	return
}
