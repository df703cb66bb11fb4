//go:build no_playwright

package retriever

import (
	"errors"

	"github.com/charmbracelet/log"
)

func NewBrowserRenderer(driverDir, userAgent, cookie string, logger *log.Logger) (PageRenderer, error) {
	return nil, errors.New("browser rendering is not available in this build")
}
