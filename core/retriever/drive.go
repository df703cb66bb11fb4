package retriever

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const defaultDriveBase = "https://drive.google.com"

var (
	driveFileIDRe   = regexp.MustCompile(`/file/d/([0-9A-Za-z_-]+)`)
	driveQueryIDRe  = regexp.MustCompile(`[?&]id=([0-9A-Za-z_-]+)`)
	driveConfirmRe  = regexp.MustCompile(`confirm=([0-9A-Za-z_-]+)`)
	driveConfirmIn  = regexp.MustCompile(`name="confirm"\s+value="([0-9A-Za-z_-]+)"`)
	driveUUIDRe     = regexp.MustCompile(`uuid=([0-9A-Za-z_-]+)`)
	driveUUIDIn     = regexp.MustCompile(`name="uuid"\s+value="([0-9A-Za-z_-]+)"`)
	driveFormRe     = regexp.MustCompile(`<form[^>]*id="download-form"[^>]*action="([^"]+)"`)
	driveTitleRe    = regexp.MustCompile(`"title":"([^"]+)"`)
	driveNameSizeRe = regexp.MustCompile(`<span class="uc-name-size"><a[^>]*>([^<]+)</a>`)
)

// hosts that already serve the file bytes
var driveDirectHosts = []string{"drive.usercontent.google.com", "storage.googleapis.com"}

// RedirectFollow resolves drive share links through the export endpoint and its
// virus scan warning page.
type RedirectFollow struct {
	fetcher  *pageFetcher
	streamer *Streamer
	base     string
	cookie   string
}

func (s *RedirectFollow) Name() string { return "redirect_follow" }

func extractDriveID(raw string) string {
	if m := driveFileIDRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if m := driveQueryIDRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

func firstSubmatch(body string, res ...*regexp.Regexp) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(body); m != nil {
			return m[1]
		}
	}
	return ""
}

func (s *RedirectFollow) Attempt(ctx context.Context, req Request) (Outcome, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, newFailure(ReasonUnsupported, s.Name(), err)
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range driveDirectHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return nil, ErrNotApplicable
		}
	}
	if strings.Contains(u.Path, "/folders/") {
		return nil, newFailure(ReasonUnsupported, s.Name(), errors.New("drive folders are not supported"))
	}
	id := extractDriveID(req.URL)
	if id == "" {
		return nil, newFailure(ReasonNoMatch, s.Name(), errors.New("no drive file id in url"))
	}

	base := s.base
	if base == "" {
		base = defaultDriveBase
	}
	exportURL := fmt.Sprintf("%s/uc?id=%s&export=download", strings.TrimRight(base, "/"), id)
	header := http.Header{}
	cookie := "download_warning_token=1"
	if s.cookie != "" {
		cookie += "; " + s.cookie
	}
	header.Set("Cookie", cookie)

	p, err := s.fetcher.get(ctx, exportURL, header, s.Name())
	if err != nil {
		return nil, err
	}
	if p.Status >= 300 && p.Status < 400 {
		loc := p.Header.Get("Location")
		if loc == "" {
			return nil, newFailure(ReasonNoMatch, s.Name(), errors.New("redirect without location"))
		}
		if lu, err := resolveRef(exportURL, loc); err == nil {
			loc = lu.String()
		}
		return s.stream(ctx, req, loc, header, parseFilename(p.Header.Get("Content-Disposition")))
	}
	if err := p.ok(s.Name()); err != nil {
		return nil, err
	}

	body := string(p.Body)
	token := firstSubmatch(body, driveConfirmRe, driveConfirmIn)
	if token == "" {
		return nil, newFailure(ReasonNoMatch, s.Name(), errors.New("no confirmation token on drive page"))
	}
	uuid := firstSubmatch(body, driveUUIDRe, driveUUIDIn)
	name := html.UnescapeString(firstSubmatch(body, driveTitleRe, driveNameSizeRe))

	downloadURL := exportURL
	if action := firstSubmatch(body, driveFormRe); action != "" {
		action = html.UnescapeString(action)
		if au, err := resolveRef(exportURL, action); err == nil {
			q := au.Query()
			q.Set("id", id)
			q.Set("export", "download")
			au.RawQuery = q.Encode()
			downloadURL = au.String()
		}
	}
	du, err := url.Parse(downloadURL)
	if err != nil {
		return nil, newFailure(ReasonNoMatch, s.Name(), err)
	}
	q := du.Query()
	q.Set("confirm", token)
	if uuid != "" {
		q.Set("uuid", uuid)
	}
	du.RawQuery = q.Encode()
	return s.stream(ctx, req, du.String(), header, name)
}

func (s *RedirectFollow) stream(ctx context.Context, req Request, downloadURL string, header http.Header, name string) (Outcome, error) {
	file, err := s.streamer.Stream(ctx, req, target{
		URL:      downloadURL,
		Header:   header,
		NameHint: name,
		Strategy: s.Name(),
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

func resolveRef(base, ref string) (*url.URL, error) {
	bu, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return bu.ResolveReference(ru), nil
}
