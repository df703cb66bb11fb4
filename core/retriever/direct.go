package retriever

import (
	"context"
	"net/http"
)

// DirectStream downloads the link itself.
type DirectStream struct {
	streamer *Streamer
	// extra request headers for this route
	header http.Header
}

func (s *DirectStream) Name() string { return "direct_stream" }

func (s *DirectStream) Attempt(ctx context.Context, req Request) (Outcome, error) {
	file, err := s.streamer.Stream(ctx, req, target{
		URL:      req.URL,
		Header:   s.header,
		Strategy: s.Name(),
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}
