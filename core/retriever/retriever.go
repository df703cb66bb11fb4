package retriever

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/common/cache"
	"github.com/krau/SaveLink-Bot/pkg/linkkind"
)

type Canceller interface {
	Cancelled() bool
}

// Transfer is a progress report of one stream.
type Transfer struct {
	Name    string
	Done    int64
	Total   int64
	Started time.Time
}

type Request struct {
	URL  string
	Kind linkkind.Kind
	// directory the file is written into
	Dir string
	// 0 means unlimited
	MaxSize int64
	// bytes per second, 0 means unlimited
	SpeedLimit int64
	Cancel     Canceller
	OnProgress func(Transfer)
}

func (r Request) cancelled() bool {
	return r.Cancel != nil && r.Cancel.Cancelled()
}

// Outcome is either a SingleFile or a FolderListing.
type Outcome interface {
	outcome()
}

type SingleFile struct {
	Path string
	Name string
	MIME string
	Size int64
}

func (SingleFile) outcome() {}

// Entry is one downloadable member of a shared folder.
type Entry struct {
	Name   string
	URL    string
	Size   int64
	Header http.Header
}

type FolderListing struct {
	Name    string
	Entries []Entry
}

func (FolderListing) outcome() {}

type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req Request) (Outcome, error)
}

type Retriever struct {
	routes   map[linkkind.Kind][]Strategy
	streamer *Streamer
}

func New(streamer *Streamer, routes map[linkkind.Kind][]Strategy) *Retriever {
	return &Retriever{routes: routes, streamer: streamer}
}

// Route returns the strategy names tried for kind, in order.
func (r *Retriever) Route(kind linkkind.Kind) []string {
	names := make([]string, 0, len(r.routes[kind]))
	for _, s := range r.routes[kind] {
		names = append(names, s.Name())
	}
	return names
}

func (r *Retriever) Retrieve(ctx context.Context, req Request) (Outcome, error) {
	if req.Kind == "" {
		req.Kind = linkkind.Classify(req.URL)
	}
	chain, ok := r.routes[req.Kind]
	if !ok || len(chain) == 0 {
		return nil, newFailure(ReasonUnsupported, "", fmt.Errorf("no route for %s", req.URL))
	}
	return Fold(ctx, chain, req)
}

// Fold tries each strategy in order. It stops at the first success or permanent failure
// and otherwise returns the last failure seen.
func Fold(ctx context.Context, chain []Strategy, req Request) (Outcome, error) {
	logger := log.FromContext(ctx)
	var last *Failure
	for _, s := range chain {
		if err := ctx.Err(); err != nil {
			return nil, transportFailure(s.Name(), err)
		}
		out, err := s.Attempt(ctx, req)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrNotApplicable) {
			continue
		}
		f := AsFailure(err)
		if f.Strategy == "" {
			f.Strategy = s.Name()
		}
		logger.Debug("strategy failed", "strategy", s.Name(), "url", req.URL, "reason", f.Reason, "err", f.Err)
		last = f
		if f.Permanent() {
			break
		}
	}
	if last == nil {
		return nil, newFailure(ReasonUnsupported, "", fmt.Errorf("no strategy applies to %s", req.URL))
	}
	return nil, last
}

// FetchEntry streams one member of a folder listing.
func (r *Retriever) FetchEntry(ctx context.Context, req Request, entry Entry) (SingleFile, error) {
	if req.cancelled() {
		return SingleFile{}, newFailure(ReasonCancelled, "", context.Canceled)
	}
	return r.streamer.Stream(ctx, req, target{
		URL:      entry.URL,
		Header:   entry.Header,
		NameHint: entry.Name,
		SizeHint: entry.Size,
		Strategy: "folder_entry",
	})
}

type Options struct {
	Client *http.Client
	// client that returns 3xx responses unfollowed
	NoRedirectClient *http.Client
	ChunkSize        int
	UserAgent        string
	Retry            int
	RetryInterval    time.Duration
	DriveCookie      string
	DriveBase        string
	TeraboxCookie    string
	TeraboxBases     []string
	Cache            *cache.Cache
	Renderer         PageRenderer
}

// NewFromOptions builds the fixed routes for every supported kind.
func NewFromOptions(opts Options) *Retriever {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	streamer := NewStreamer(opts.Client, opts.ChunkSize, opts.UserAgent)
	fetcher := &pageFetcher{
		client:    opts.Client,
		userAgent: opts.UserAgent,
		retry:     opts.Retry,
		interval:  opts.RetryInterval,
	}
	noRedirect := opts.NoRedirectClient
	if noRedirect == nil {
		noRedirect = opts.Client
	}
	driveFetcher := *fetcher
	driveFetcher.client = noRedirect

	lockerHeader := http.Header{}
	lockerHeader.Set("Referer", teraboxReferer)
	if opts.TeraboxCookie != "" {
		lockerHeader.Set("Cookie", opts.TeraboxCookie)
	}

	routes := map[linkkind.Kind][]Strategy{
		linkkind.KindDrive: {
			&RedirectFollow{fetcher: &driveFetcher, streamer: streamer, base: opts.DriveBase, cookie: opts.DriveCookie},
			&DirectStream{streamer: streamer},
		},
		linkkind.KindLocker: {
			&ApiProbe{fetcher: fetcher, streamer: streamer, bases: opts.TeraboxBases, cookie: opts.TeraboxCookie, cache: opts.Cache},
			&PageScrape{fetcher: fetcher, streamer: streamer, cookie: opts.TeraboxCookie, renderer: opts.Renderer},
			&DirectStream{streamer: streamer, header: lockerHeader},
		},
		linkkind.KindDirect: {
			&DirectStream{streamer: streamer},
		},
	}
	return New(streamer, routes)
}
