package helpers

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/sophiebushman1/jwt-pizza/tests/e2e/config"
)

// BrowserHelper provides browser setup and teardown for tests
type BrowserHelper struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	Config     *config.TestConfig
	t          *testing.T
}

// NewBrowserHelper creates a new browser helper instance
func NewBrowserHelper(t *testing.T) *BrowserHelper {
	return &BrowserHelper{
		Config: config.GetConfig(),
		t:      t,
	}
}

// Setup initializes the browser and creates a new page
func (b *BrowserHelper) Setup() error {
	// Initialize Playwright
	var pw *playwright.Playwright
	var err error
	if os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err = playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}
	// First attempt
	pw, err = playwright.Run()
	if err != nil {
		// Fallback: attempt install driver explicitly then retry
		_ = playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
		pw, err = playwright.Run()
		if err != nil {
			return fmt.Errorf("could not start playwright after retry (ensure driver version matches image): %w", err)
		}
	}
	b.Playwright = pw

	// Launch browser
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.Config.Headless),
		SlowMo:   playwright.Float(b.Config.SlowMo),
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	b.Browser = browser

	// Create context with viewport and other settings
	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
	}
	if b.Config.Videos {
		contextOptions.RecordVideo = &playwright.RecordVideo{
			Dir: "./test-results/videos",
		}
	}
	context, err := browser.NewContext(contextOptions)
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	b.Context = context

	// Create page
	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	b.Page = page

	// Set default timeout
	page.SetDefaultTimeout(float64(b.Config.Timeout.Milliseconds()))

	return nil
}

// TearDown closes the browser and cleans up resources
func (b *BrowserHelper) TearDown() {
	// Take screenshot on failure
	if b.t.Failed() && b.Config.Screenshots && b.Page != nil {
		// Subtest names contain slashes; flatten them for the filesystem.
		name := strings.ReplaceAll(b.t.Name(), "/", "_")
		screenshotPath := fmt.Sprintf("./test-results/screenshots/%s_%s.png",
			name, uuid.New().String()[:8])
		b.Page.Screenshot(playwright.PageScreenshotOptions{
			Path: playwright.String(screenshotPath),
		})
	}

	// Close resources
	if b.Page != nil {
		b.Page.Close()
	}
	if b.Context != nil {
		b.Context.Close()
	}
	if b.Browser != nil {
		b.Browser.Close()
	}
	if b.Playwright != nil {
		b.Playwright.Stop()
	}
}

// NavigateTo navigates to a path relative to the base URL
func (b *BrowserHelper) NavigateTo(path string) error {
	url := b.Config.BaseURL + path
	_, err := b.Page.Goto(url)
	if err != nil && strings.Contains(err.Error(), "ERR_TOO_MANY_REDIRECTS") {
		return fmt.Errorf("redirect loop navigating to %s (check BASE_URL port configuration): %w", url, err)
	}
	return err
}

// WaitForLoad waits for the SPA to finish its in-flight requests
func (b *BrowserHelper) WaitForLoad() error {
	return b.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	})
}

// AddPizzaToCart clicks the menu card for the named pizza. The menu page must
// already be open.
func (b *BrowserHelper) AddPizzaToCart(title string) error {
	card := b.Page.Locator(fmt.Sprintf("button:has-text('%s')", title)).First()
	if err := card.WaitFor(); err != nil {
		return fmt.Errorf("pizza %q not on the menu: %w", title, err)
	}
	return card.Click()
}

// WaitForLink waits until a navigation link with the given text is visible.
func (b *BrowserHelper) WaitForLink(text string, timeout float64) error {
	return b.Page.Locator(fmt.Sprintf("a:has-text('%s')", text)).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(timeout),
	})
}
