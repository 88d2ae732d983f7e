package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiebushman1/jwt-pizza/internal/fixture"
	"github.com/sophiebushman1/jwt-pizza/tests/e2e/helpers"
)

// TestPublicPages covers the views that render without a session. The
// subtests only read fixture data, so one browser and one backend serve
// them all.
func TestPublicPages(t *testing.T) {
	requireFrontend(t)

	browser := helpers.NewBrowserHelper(t)
	backend := fixture.New()
	err := browser.SetupWithFixture(backend)
	require.NoError(t, err, "Failed to setup browser")
	defer browser.TearDown()

	t.Run("Home page shows the pizza pitch", func(t *testing.T) {
		require.NoError(t, browser.NavigateTo("/"))

		title, err := browser.Page.Title()
		require.NoError(t, err, "Failed to get page title")
		assert.Equal(t, "JWT Pizza", title)

		orderNow := browser.Page.Locator("button:has-text('Order now')")
		count, _ := orderNow.Count()
		assert.Greater(t, count, 0, "Order now button should be present")
	})

	t.Run("About page tells the secret sauce story", func(t *testing.T) {
		require.NoError(t, browser.NavigateTo("/about"))

		sauce := browser.Page.Locator("text=The secret sauce").First()
		require.NoError(t, sauce.WaitFor(), "About heading should render")
	})

	t.Run("Docs page renders the API reference", func(t *testing.T) {
		require.NoError(t, browser.NavigateTo("/docs"))

		heading := browser.Page.Locator("text=JWT Pizza API").First()
		require.NoError(t, heading.WaitFor(), "Docs heading should render")
	})

	t.Run("Register page greets new diners", func(t *testing.T) {
		require.NoError(t, browser.NavigateTo("/register"))

		greeting := browser.Page.Locator("text=Welcome to the party").First()
		require.NoError(t, greeting.WaitFor(), "Register greeting should render")

		emailInput := browser.Page.Locator("input[placeholder='Email address']")
		count, _ := emailInput.Count()
		assert.Greater(t, count, 0, "Register form should have an email input")
	})

	t.Run("Unknown route shows the not-found view", func(t *testing.T) {
		require.NoError(t, browser.NavigateTo("/definitely-not-a-page"))

		oops := browser.Page.Locator("text=Oops").First()
		require.NoError(t, oops.WaitFor(), "Not-found view should render")
	})
}
