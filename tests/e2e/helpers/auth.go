package helpers

import "fmt"

// Form selectors for the pizza front-end. The login and register pages label
// their inputs by placeholder, not by id.
const (
	emailInputSelector    = "input[placeholder='Email address']"
	passwordInputSelector = "input[placeholder='Password']"
	nameInputSelector     = "input[placeholder='Full name']"
)

// AuthHelper provides authentication utilities for tests
type AuthHelper struct {
	browser *BrowserHelper
}

// NewAuthHelper creates a new authentication helper
func NewAuthHelper(browser *BrowserHelper) *AuthHelper {
	return &AuthHelper{
		browser: browser,
	}
}

// Login submits the login form with the given credentials. It returns once
// the resulting network traffic has settled; whether the login was accepted
// is for the caller to assert.
func (a *AuthHelper) Login(email, password string) error {
	if err := a.browser.NavigateTo("/login"); err != nil {
		return fmt.Errorf("failed to navigate to login: %w", err)
	}
	return a.submitCredentials(email, password, "button:has-text('Login')")
}

// LoginFromCurrentPage fills the login form already on screen, e.g. the one
// the checkout flow raises for unauthenticated diners.
func (a *AuthHelper) LoginFromCurrentPage(email, password string) error {
	return a.submitCredentials(email, password, "button:has-text('Login')")
}

func (a *AuthHelper) submitCredentials(email, password, submitSelector string) error {
	emailInput := a.browser.Page.Locator(emailInputSelector)
	if err := emailInput.WaitFor(); err != nil {
		return fmt.Errorf("email input not found: %w", err)
	}
	if err := emailInput.Fill(email); err != nil {
		return fmt.Errorf("failed to fill email: %w", err)
	}
	if err := a.browser.Page.Locator(passwordInputSelector).Fill(password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := a.browser.Page.Locator(submitSelector).Click(); err != nil {
		return fmt.Errorf("failed to submit credentials: %w", err)
	}
	if err := a.browser.WaitForLoad(); err != nil {
		return fmt.Errorf("failed waiting for login response: %w", err)
	}
	return nil
}

// Register submits the registration form. The fixture accepts no new
// accounts, so the front-end is expected to surface an error afterwards.
func (a *AuthHelper) Register(name, email, password string) error {
	if err := a.browser.NavigateTo("/register"); err != nil {
		return fmt.Errorf("failed to navigate to register: %w", err)
	}
	nameInput := a.browser.Page.Locator(nameInputSelector)
	if err := nameInput.WaitFor(); err != nil {
		return fmt.Errorf("name input not found: %w", err)
	}
	if err := nameInput.Fill(name); err != nil {
		return fmt.Errorf("failed to fill name: %w", err)
	}
	if err := a.browser.Page.Locator(emailInputSelector).Fill(email); err != nil {
		return fmt.Errorf("failed to fill email: %w", err)
	}
	if err := a.browser.Page.Locator(passwordInputSelector).Fill(password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := a.browser.Page.Locator("button:has-text('Register')").Click(); err != nil {
		return fmt.Errorf("failed to submit registration: %w", err)
	}
	if err := a.browser.WaitForLoad(); err != nil {
		return fmt.Errorf("failed waiting for registration response: %w", err)
	}
	return nil
}

// Logout visits the logout route, which clears the session and bounces back
// to the home page.
func (a *AuthHelper) Logout() error {
	if err := a.browser.NavigateTo("/logout"); err != nil {
		return fmt.Errorf("failed to navigate to /logout: %w", err)
	}
	return a.browser.WaitForLoad()
}

// LoginLinkVisible reports whether the nav shows a Login link, i.e. no
// session is active in the UI.
func (a *AuthHelper) LoginLinkVisible() bool {
	visible, err := a.browser.Page.Locator("a:has-text('Login')").First().IsVisible()
	return err == nil && visible
}
