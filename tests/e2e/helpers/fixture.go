package helpers

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/sophiebushman1/jwt-pizza/internal/fixture"
)

// InstallFixture routes every API pattern the backend knows about into the
// page, so the front-end talks to scripted data instead of a real service.
// Requests to URLs outside the fixture's patterns are not intercepted at all.
// Call before the first navigation; Playwright applies routes to subsequent
// requests only.
func InstallFixture(page playwright.Page, backend *fixture.Backend) error {
	for _, pattern := range backend.Patterns() {
		handler := func(route playwright.Route) {
			req := route.Request()
			var body []byte
			if postData, err := req.PostData(); err == nil {
				body = []byte(postData)
			}

			resp, err := backend.Handle(fixture.Request{
				Method: req.Method(),
				URL:    req.URL(),
				Body:   body,
			})
			if err != nil {
				// Shouldn't happen: only registered patterns reach here. Let
				// the request through rather than failing the page.
				_ = route.Continue()
				return
			}

			_ = route.Fulfill(playwright.RouteFulfillOptions{
				Status:      playwright.Int(resp.Status),
				ContentType: playwright.String(resp.ContentType),
				Body:        resp.Body,
			})
		}

		if err := page.Route(pattern.Playwright(), handler); err != nil {
			return fmt.Errorf("route %s: %w", pattern, err)
		}
	}
	return nil
}

// SetupWithFixture is the standard opener for scenario tests: browser up,
// fixture routed, front page loaded.
func (b *BrowserHelper) SetupWithFixture(backend *fixture.Backend) error {
	if err := b.Setup(); err != nil {
		return err
	}
	if err := InstallFixture(b.Page, backend); err != nil {
		return fmt.Errorf("could not install fixture routes: %w", err)
	}
	return b.NavigateTo("/")
}
