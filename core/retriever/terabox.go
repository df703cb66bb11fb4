package retriever

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/common/cache"
)

const (
	teraboxAppID   = "250528"
	teraboxReferer = "https://www.terabox.com/"
)

var (
	teraboxShortRe = regexp.MustCompile(`/s/([0-9A-Za-z_-]+)`)
	teraboxSurlRe  = regexp.MustCompile(`[?&]surl=([0-9A-Za-z_-]+)`)
)

func extractShortID(raw string) string {
	if m := teraboxShortRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if m := teraboxSurlRe.FindStringSubmatch(raw); m != nil {
		// surl links drop the leading 1 of the short id
		return "1" + m[1]
	}
	return ""
}

// flexInt accepts numbers encoded either as json numbers or strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type teraboxItem struct {
	Name  string  `json:"server_filename"`
	DLink string  `json:"dlink"`
	Size  flexInt `json:"size"`
	IsDir flexInt `json:"isdir"`
	Path  string  `json:"path"`
	FsID  flexInt `json:"fs_id"`
}

type teraboxResponse struct {
	Errno int           `json:"errno"`
	List  []teraboxItem `json:"list"`
}

type probeResult struct {
	Name    string
	Entries []Entry
}

// ApiProbe asks the locker share api for the file listing of a short link.
type ApiProbe struct {
	fetcher  *pageFetcher
	streamer *Streamer
	bases    []string
	cookie   string
	cache    *cache.Cache
}

func (s *ApiProbe) Name() string { return "api_probe" }

func (s *ApiProbe) header(base string) http.Header {
	h := http.Header{}
	h.Set("Referer", strings.TrimRight(base, "/")+"/")
	h.Set("Accept", "application/json, text/plain, */*")
	if s.cookie != "" {
		h.Set("Cookie", s.cookie)
	}
	return h
}

func (s *ApiProbe) Attempt(ctx context.Context, req Request) (Outcome, error) {
	id := extractShortID(req.URL)
	if id == "" || len(s.bases) == 0 {
		return nil, ErrNotApplicable
	}
	cacheKey := "terabox:" + id
	result, ok := cache.Get[*probeResult](s.cache, cacheKey)
	if !ok {
		var err error
		result, err = s.probe(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(cacheKey, result); err != nil {
				log.FromContext(ctx).Debug("failed to cache probe result", "key", cacheKey, "err", err)
			}
		}
	}
	if len(result.Entries) > 1 {
		return FolderListing{Name: result.Name, Entries: result.Entries}, nil
	}
	entry := result.Entries[0]
	file, err := s.streamer.Stream(ctx, req, target{
		URL:      entry.URL,
		Header:   entry.Header,
		NameHint: entry.Name,
		SizeHint: entry.Size,
		Strategy: s.Name(),
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (s *ApiProbe) probe(ctx context.Context, id string) (*probeResult, error) {
	var last error
	for _, base := range s.bases {
		result, err := s.probeBase(ctx, strings.TrimRight(base, "/"), id)
		if err == nil {
			return result, nil
		}
		if f := AsFailure(err); f.Reason == ReasonCancelled {
			return nil, f
		}
		last = err
	}
	return nil, last
}

func (s *ApiProbe) call(ctx context.Context, base, endpoint string, q url.Values) (*teraboxResponse, error) {
	q.Set("app_id", teraboxAppID)
	q.Set("web", "1")
	q.Set("channel", "dubox")
	q.Set("clienttype", "0")
	p, err := s.fetcher.get(ctx, base+endpoint+"?"+q.Encode(), s.header(base), s.Name())
	if err != nil {
		return nil, err
	}
	if err := p.ok(s.Name()); err != nil {
		return nil, err
	}
	var resp teraboxResponse
	if err := json.Unmarshal(p.Body, &resp); err != nil {
		return nil, newFailure(ReasonNoMatch, s.Name(), fmt.Errorf("invalid api response: %w", err))
	}
	if resp.Errno != 0 {
		return nil, newFailure(ReasonNoMatch, s.Name(), fmt.Errorf("api errno %d", resp.Errno))
	}
	return &resp, nil
}

func (s *ApiProbe) probeBase(ctx context.Context, base, id string) (*probeResult, error) {
	info, err := s.call(ctx, base, "/api/shorturlinfo", url.Values{"shorturl": {id}, "root": {"1"}})
	if err != nil {
		return nil, err
	}
	items := info.List
	name := ""
	if len(items) == 1 && items[0].IsDir == 1 {
		dir := items[0]
		name = dir.Name
		listing, err := s.call(ctx, base, "/share/list", url.Values{
			"shorturl": {strings.TrimPrefix(id, "1")},
			"dir":      {dir.Path},
			"root":     {"0"},
			"page":     {"1"},
			"num":      {"1000"},
		})
		if err != nil {
			return nil, err
		}
		items = listing.List
	}

	header := s.header(base)
	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		// nested folders are not walked
		if it.IsDir == 1 || it.DLink == "" {
			continue
		}
		entryName := it.Name
		if entryName == "" {
			entryName = path.Base(it.Path)
		}
		entries = append(entries, Entry{
			Name:   entryName,
			URL:    it.DLink,
			Size:   int64(it.Size),
			Header: header.Clone(),
		})
	}
	if len(entries) == 0 {
		return nil, newFailure(ReasonNoMatch, s.Name(), errors.New("share has no downloadable files"))
	}
	if name == "" && len(entries) > 1 {
		name = id
	}
	return &probeResult{Name: name, Entries: entries}, nil
}

var (
	scrapeLinkRes = []*regexp.Regexp{
		regexp.MustCompile(`"dlink":"([^"]+)"`),
		regexp.MustCompile(`"downloadLink":"([^"]+)"`),
		regexp.MustCompile(`"link":"([^"]+)"`),
	}
	scrapeNameRes = []*regexp.Regexp{
		regexp.MustCompile(`"server_filename":"([^"]+)"`),
		regexp.MustCompile(`"filename":"([^"]+)"`),
		regexp.MustCompile(`"name":"([^"]+)"`),
	}
	scrapeSizeRe = regexp.MustCompile(`"size":(\d+)`)

	brandNames = []string{"TeraBox", "1024Tera"}
	jsUnescape = strings.NewReplacer(`\/`, "/", `\u0026`, "&", "&amp;", "&")
)

type scraped struct {
	Link string
	Name string
	Size int64
}

func scrapePage(body string) scraped {
	var out scraped
	for _, re := range scrapeLinkRes {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		link := jsUnescape.Replace(m[1])
		if strings.HasPrefix(link, "http") {
			out.Link = link
			break
		}
	}
	for _, re := range scrapeNameRes {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		branded := false
		for _, b := range brandNames {
			if strings.EqualFold(name, b) {
				branded = true
				break
			}
		}
		if name != "" && !branded {
			out.Name = name
			break
		}
	}
	if out.Name != "" && !strings.Contains(out.Name, ".") {
		out.Name += ".mp4"
	}
	if m := scrapeSizeRe.FindStringSubmatch(body); m != nil {
		out.Size, _ = strconv.ParseInt(m[1], 10, 64)
	}
	return out
}

// PageScrape pulls the download link out of the share landing page.
type PageScrape struct {
	fetcher  *pageFetcher
	streamer *Streamer
	cookie   string
	renderer PageRenderer
}

func (s *PageScrape) Name() string { return "page_scrape" }

func (s *PageScrape) header() http.Header {
	h := http.Header{}
	h.Set("Referer", teraboxReferer)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	if s.cookie != "" {
		h.Set("Cookie", s.cookie)
	}
	return h
}

func (s *PageScrape) load(ctx context.Context, pageURL string) (string, error) {
	if s.renderer != nil {
		content, err := s.renderer.Render(ctx, pageURL)
		if err == nil {
			return content, nil
		}
		log.FromContext(ctx).Warn("page render failed, fetching raw page", "url", pageURL, "err", err)
	}
	p, err := s.fetcher.get(ctx, pageURL, s.header(), s.Name())
	if err != nil {
		return "", err
	}
	if err := p.ok(s.Name()); err != nil {
		return "", err
	}
	return string(p.Body), nil
}

func (s *PageScrape) Attempt(ctx context.Context, req Request) (Outcome, error) {
	body, err := s.load(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	found := scrapePage(body)
	if found.Link == "" {
		return nil, newFailure(ReasonNoMatch, s.Name(), errors.New("no download link on page"))
	}
	file, err := s.streamer.Stream(ctx, req, target{
		URL:      found.Link,
		Header:   s.header(),
		NameHint: found.Name,
		SizeHint: found.Size,
		Strategy: s.Name(),
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}
