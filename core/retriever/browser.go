package retriever

import "context"

// PageRenderer returns the html of a page after its scripts ran.
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}
