package retriever

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/common/cache"
	"github.com/krau/SaveLink-Bot/common/utils/netutil"
	"github.com/krau/SaveLink-Bot/config"
)

func NewFromConfig(ctx context.Context, cfg *config.Config, c *cache.Cache) (*Retriever, error) {
	logger := log.FromContext(ctx).WithPrefix("retriever")
	src := cfg.Source
	tb, err := src.Terabox()
	if err != nil {
		return nil, err
	}
	jar, err := netutil.NewCookieJar()
	if err != nil {
		return nil, err
	}
	clientOpts := netutil.ClientOptions{
		Proxy:           src.Proxy,
		Timeout:         src.Timeout,
		ConnectTimeout:  src.ConnectTimeout,
		FollowRedirects: true,
		Jar:             jar,
	}
	client, err := netutil.NewHTTPClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	clientOpts.FollowRedirects = false
	noRedirect, err := netutil.NewHTTPClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	var renderer PageRenderer
	if tb.Browser {
		renderer, err = NewBrowserRenderer(tb.BrowserDriverDir, src.UserAgent, tb.Cookie, logger)
		if err != nil {
			logger.Warn("Browser rendering disabled", "err", err)
			renderer = nil
		}
	}

	return NewFromOptions(Options{
		Client:           client,
		NoRedirectClient: noRedirect,
		ChunkSize:        cfg.Quota.ChunkBytes(),
		UserAgent:        src.UserAgent,
		Retry:            src.Retry,
		DriveCookie:      src.DriveCookie,
		TeraboxCookie:    tb.Cookie,
		TeraboxBases:     tb.APIBases,
		Cache:            c,
		Renderer:         renderer,
	}), nil
}
