//go:build !no_playwright

package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/playwright-community/playwright-go"
)

type playwrightRenderer struct {
	driverDir   string
	userAgent   string
	header      map[string]string
	installOnce sync.Once
	installErr  error
	logger      *slog.Logger
}

// NewBrowserRenderer renders pages with a headless chromium, installing it on first use.
func NewBrowserRenderer(driverDir, userAgent, cookie string, logger *log.Logger) (PageRenderer, error) {
	if driverDir == "" {
		driverDir = "./playwright"
	}
	if logger == nil {
		logger = log.Default()
	}
	header := map[string]string{"Referer": teraboxReferer}
	if cookie != "" {
		header["Cookie"] = cookie
	}
	return &playwrightRenderer{
		driverDir: driverDir,
		userAgent: userAgent,
		header:    header,
		logger:    slog.New(logger),
	}, nil
}

func (r *playwrightRenderer) Render(ctx context.Context, url string) (string, error) {
	r.installOnce.Do(func() {
		r.installErr = playwright.Install(&playwright.RunOptions{
			Browsers:        []string{"chromium"},
			DriverDirectory: r.driverDir,
			Logger:          r.logger,
		})
	})
	if r.installErr != nil {
		return "", fmt.Errorf("failed to install playwright: %w", r.installErr)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pw, err := playwright.Run(&playwright.RunOptions{
		DriverDirectory: r.driverDir,
		Logger:          r.logger,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	opts := playwright.BrowserNewPageOptions{ExtraHttpHeaders: r.header}
	if r.userAgent != "" {
		opts.UserAgent = playwright.String(r.userAgent)
	}
	page, err := browser.NewPage(opts)
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(60000),
	})
	if err != nil {
		return "", fmt.Errorf("failed to navigate: %w", err)
	}
	if resp != nil && resp.Status() >= 400 {
		return "", fmt.Errorf("bad status code: %d", resp.Status())
	}
	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return content, nil
}
