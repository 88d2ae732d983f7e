package e2e

import (
	"os"
	"testing"

	"github.com/sophiebushman1/jwt-pizza/tests/e2e/config"
)

// requireFrontend gates browser scenarios: they skip when SKIP_BROWSER is set
// or when no front-end answers at the configured base URL.
func requireFrontend(t *testing.T) {
	t.Helper()
	if os.Getenv("SKIP_BROWSER") == "true" {
		t.Skip("Skipping browser test")
	}
	cfg := config.GetConfig()
	if !config.Reachable(cfg.BaseURL) {
		t.Skipf("front-end not reachable at %s; start the dev server or set PIZZA_BASE_URL", cfg.BaseURL)
	}
}

// TestSetup verifies the E2E environment is configured correctly
func TestSetup(t *testing.T) {
	t.Log("Pizza E2E Test Environment Check")
	t.Log("================================")

	cfg := config.GetConfig()
	t.Logf("BaseURL: %s", cfg.BaseURL)
	t.Logf("Headless: %v", cfg.Headless)
	t.Logf("Timeout: %s", cfg.Timeout)
	t.Logf("Screenshots on failure: %v", cfg.Screenshots)

	if config.Reachable(cfg.BaseURL) {
		t.Logf("✅ Front-end answering at %s", cfg.BaseURL)
	} else {
		t.Logf("⚠️  Front-end not reachable at %s - browser scenarios will skip", cfg.BaseURL)
	}

	t.Log("Playwright Go bindings: Available")
	t.Log("✅ E2E test environment is ready!")
}
