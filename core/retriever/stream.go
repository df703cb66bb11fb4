package retriever

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/krau/SaveLink-Bot/common/utils/fsutil"
	"github.com/krau/SaveLink-Bot/common/utils/ioutil"
)

const (
	DefaultChunkSize = 1 << 20
	fallbackName     = "downloaded_file"
)

// Streamer writes a remote body into a local file.
type Streamer struct {
	client    *http.Client
	chunkSize int
	userAgent string
}

func NewStreamer(client *http.Client, chunkSize int, userAgent string) *Streamer {
	if client == nil {
		client = http.DefaultClient
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Streamer{client: client, chunkSize: chunkSize, userAgent: userAgent}
}

type target struct {
	URL      string
	Header   http.Header
	NameHint string
	// declared size from an api listing, used when the response has no length
	SizeHint int64
	Strategy string
}

func (s *Streamer) Stream(ctx context.Context, req Request, t target) (SingleFile, error) {
	logger := log.FromContext(ctx)
	fail := func(reason Reason, err error) (SingleFile, error) {
		return SingleFile{}, newFailure(reason, t.Strategy, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return fail(ReasonUnsupported, err)
	}
	for k, vs := range t.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if s.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", s.userAgent)
	}
	httpReq.Header.Set("Accept-Encoding", "identity")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return SingleFile{}, transportFailure(t.Strategy, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		f := newFailure(ReasonHTTPStatus, t.Strategy, fmt.Errorf("unexpected status %s", resp.Status))
		f.Status = resp.StatusCode
		return SingleFile{}, f
	}
	if req.MaxSize > 0 && resp.ContentLength > req.MaxSize {
		f := newFailure(ReasonTooLarge, t.Strategy, fmt.Errorf("content length %d exceeds %d", resp.ContentLength, req.MaxSize))
		f.Limit = req.MaxSize
		return SingleFile{}, f
	}
	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "text/html" {
		return fail(ReasonHTMLPage, errors.New("server returned an html page"))
	}

	// peek the first chunk before creating the file
	br := bufio.NewReaderSize(resp.Body, s.chunkSize)
	head, err := br.Peek(min(s.chunkSize, 3072))
	if len(head) == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return SingleFile{}, transportFailure(t.Strategy, err)
		}
		return fail(ReasonEmptyBody, errors.New("empty response body"))
	}
	sniffed := mimetype.Detect(head)
	if sniffed.Is("text/html") {
		return fail(ReasonHTMLPage, errors.New("body looks like an html page"))
	}

	name := resolveName(resp, t, mediaType, sniffed)
	if err := os.MkdirAll(req.Dir, os.ModePerm); err != nil {
		return fail(ReasonUnknown, err)
	}
	fp := fsutil.UniquePath(req.Dir, name)
	file, err := fsutil.CreateFile(fp)
	if err != nil {
		return fail(ReasonUnknown, err)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = t.SizeHint
	}
	transfer := Transfer{Name: filepath.Base(fp), Total: total, Started: time.Now()}
	report := func(n int) {
		transfer.Done += int64(n)
		if req.OnProgress != nil {
			req.OnProgress(transfer)
		}
	}
	limited := ioutil.NewLimitWriter(file, req.MaxSize)
	var w io.Writer = ioutil.NewRateWriter(ctx, limited, req.SpeedLimit)
	w = ioutil.NewProgressWriter(w, report)

	buf := make([]byte, s.chunkSize)
	_, err = io.CopyBuffer(w, br, buf)
	if err != nil {
		if cerr := file.CloseAndRemove(); cerr != nil {
			logger.Warn("failed to remove partial file", "path", fp, "err", cerr)
		}
		if errors.Is(err, ioutil.ErrLimitExceeded) {
			f := newFailure(ReasonTooLarge, t.Strategy, err)
			f.Limit = req.MaxSize
			return SingleFile{}, f
		}
		return SingleFile{}, transportFailure(t.Strategy, err)
	}
	if err := file.Close(); err != nil {
		file.Remove()
		return fail(ReasonUnknown, err)
	}
	if limited.Written() == 0 {
		file.Remove()
		return fail(ReasonEmptyBody, errors.New("empty response body"))
	}

	mimeType := mediaType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = sniffed.String()
	}
	return SingleFile{
		Path: fp,
		Name: filepath.Base(fp),
		MIME: mimeType,
		Size: limited.Written(),
	}, nil
}

// resolveName picks the disposition name, then the hint, then the url path, then a fixed fallback,
// and makes sure the result carries a short extension.
func resolveName(resp *http.Response, t target, mediaType string, sniffed *mimetype.MIME) string {
	name := parseFilename(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = t.NameHint
	}
	if name == "" {
		name = parseFilenameFromURL(resp.Request.URL.String())
	}
	name = fsutil.SanitizeFilename(name)
	if name == "" {
		name = fallbackName
	}
	if fsutil.ShortExt(name) != "" {
		return name
	}
	ext := ""
	if mediaType != "" && mediaType != "application/octet-stream" {
		if m := mimetype.Lookup(mediaType); m != nil {
			ext = m.Extension()
		}
	}
	if ext == "" && sniffed != nil && !sniffed.Is("application/octet-stream") {
		ext = sniffed.Extension()
	}
	if ext == "" {
		ext = fsutil.ShortExt(parseFilenameFromURL(t.URL))
	}
	if ext == "" && strings.HasPrefix(mediaType, "video/") {
		ext = ".mp4"
	}
	return name + ext
}
