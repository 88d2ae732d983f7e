package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
)

// ErrNoRoute is returned by Handle when no registered pattern matches the
// request URL. The HTTP adapter maps it to 404; the browser binding never sees
// it because it only registers the fixture's own patterns.
var ErrNoRoute = errors.New("fixture: no route matches")

// Fixed response values used when token signing is disabled.
const (
	StaticAuthToken = "abcdef"
	StaticOrderJWT  = "eyJpYXQ"
	OrderID         = 23
)

// Request is the transport-neutral shape handed to Handle. URL may be a full
// URL (browser interception) or a path with query (HTTP adapter); matching
// works on either.
type Request struct {
	Method string
	URL    string
	Body   []byte
}

// Response is what a handler produced. Route names the pattern that matched,
// for logging and metrics.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	Route       string
}

// Pattern decides whether a URL belongs to a route and knows how to register
// itself with Playwright (glob string or compiled regexp).
type Pattern interface {
	Matches(url string) bool
	Playwright() interface{}
	String() string
}

// suffixPattern matches when the URL path (query stripped) ends with the
// pattern text.
type suffixPattern string

func (p suffixPattern) Matches(url string) bool {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	return strings.HasSuffix(url, string(p))
}

func (p suffixPattern) Playwright() interface{} { return "**" + string(p) }
func (p suffixPattern) String() string          { return string(p) }

// regexPattern matches the raw URL, query string included.
type regexPattern struct {
	re *regexp.Regexp
}

func (p regexPattern) Matches(url string) bool { return p.re.MatchString(url) }
func (p regexPattern) Playwright() interface{} { return p.re }
func (p regexPattern) String() string          { return p.re.String() }

type route struct {
	pattern Pattern
	handler func(*Backend, Request) Response
}

// Backend is the scripted stand-in for the pizza service. It answers a fixed
// set of request patterns with canned or session-derived JSON and tracks a
// single currently-logged-in user. Construct one per test; nothing is shared.
type Backend struct {
	mu      sync.Mutex
	data    Data
	session *User
	routes  []route

	signer    *tokenSigner
	contracts bool
}

// Option customizes a Backend at construction time.
type Option func(*Backend)

// WithData replaces the default seed set.
func WithData(d Data) Option {
	return func(b *Backend) { b.data = d }
}

// WithSignedTokens makes the auth token and order jwt real HS256 tokens signed
// with secret instead of the fixed constants.
func WithSignedTokens(secret string) Option {
	return func(b *Backend) { b.signer = newTokenSigner(secret) }
}

// WithContracts validates auth and order request bodies against their JSON
// schemas before dispatch; violations answer 400.
func WithContracts() Option {
	return func(b *Backend) { b.contracts = true }
}

// New builds a Backend with the default seed data and the five endpoint
// patterns. Routes are evaluated in registration order. The patterns are
// mutually disjoint (/api/order/menu does not suffix-match /api/order), so
// the order only mirrors how the browser suite registers its routes.
func New(opts ...Option) *Backend {
	b := &Backend{data: DefaultData()}
	for _, o := range opts {
		o(b)
	}
	b.routes = []route{
		{suffixPattern("/api/auth"), (*Backend).handleAuth},
		{suffixPattern("/api/user/me"), (*Backend).handleCurrentUser},
		{suffixPattern("/api/order/menu"), (*Backend).handleMenu},
		{regexPattern{regexp.MustCompile(`/api/franchise(\?.*)?$`)}, (*Backend).handleFranchises},
		{suffixPattern("/api/order"), (*Backend).handleOrder},
	}
	return b
}

// Patterns returns the registered patterns in dispatch order.
func (b *Backend) Patterns() []Pattern {
	ps := make([]Pattern, len(b.routes))
	for i, r := range b.routes {
		ps[i] = r.pattern
	}
	return ps
}

// Handle dispatches a request to the first matching route.
func (b *Backend) Handle(req Request) (Response, error) {
	for _, r := range b.routes {
		if r.pattern.Matches(req.URL) {
			resp := r.handler(b, req)
			resp.Route = r.pattern.String()
			return resp, nil
		}
	}
	return Response{}, fmt.Errorf("%w: %s %s", ErrNoRoute, req.Method, req.URL)
}

// Session returns a copy of the currently-logged-in user, or nil when the
// session pointer is clear.
func (b *Backend) Session() *User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil
	}
	u := *b.session
	return &u
}

// SetData swaps the served collections. The session pointer survives a swap;
// it was copied out of the old data at login time.
func (b *Backend) SetData(d Data) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = d
}

// snapshot returns the current data under the lock.
func (b *Backend) snapshot() Data {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

func (b *Backend) handleAuth(req Request) Response {
	switch req.Method {
	case http.MethodDelete:
		b.mu.Lock()
		b.session = nil
		b.mu.Unlock()
		return jsonResponse(http.StatusOK, map[string]interface{}{})

	case http.MethodPut:
		if b.contracts {
			if resp, ok := validate(loginSchema, req.Body); !ok {
				return resp
			}
		}
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if len(req.Body) == 0 || json.Unmarshal(req.Body, &creds) != nil {
			return errorResponse(http.StatusBadRequest, "invalid request body")
		}
		b.mu.Lock()
		user, found := b.data.FindUser(creds.Email)
		if !found || user.Password != creds.Password {
			b.mu.Unlock()
			return errorResponse(http.StatusUnauthorized, "Unauthorized")
		}
		b.session = &user
		b.mu.Unlock()

		token, err := b.authToken(user)
		if err != nil {
			return errorResponse(http.StatusInternalServerError, "token signing failed")
		}
		return jsonResponse(http.StatusOK, map[string]interface{}{
			"user":  user,
			"token": token,
		})

	default:
		// Covers the register POST as well: this fixture has no account
		// creation, so the front-end sees a rejected registration.
		return errorResponse(http.StatusBadRequest, "unsupported method")
	}
}

func (b *Backend) handleCurrentUser(Request) Response {
	user := b.Session()
	if user == nil {
		return errorResponse(http.StatusUnauthorized, "Not logged in")
	}
	return jsonResponse(http.StatusOK, user)
}

func (b *Backend) handleMenu(Request) Response {
	return jsonResponse(http.StatusOK, b.snapshot().Menu)
}

func (b *Backend) handleFranchises(Request) Response {
	return jsonResponse(http.StatusOK, map[string]interface{}{
		"franchises": b.snapshot().Franchises,
	})
}

// handleOrder echoes the submitted payload with an injected id and a jwt. The
// method is not dispatched on; the front-end only POSTs here, and anything
// else gets the same echo of an empty body.
func (b *Backend) handleOrder(req Request) Response {
	if b.contracts && len(req.Body) > 0 {
		if resp, ok := validate(orderSchema, req.Body); !ok {
			return resp
		}
	}
	order := map[string]interface{}{}
	if len(req.Body) > 0 {
		// A non-object body is ignored rather than rejected; the echo then
		// carries only the injected id.
		_ = json.Unmarshal(req.Body, &order)
	}
	order["id"] = OrderID

	jwt, err := b.orderJWT(order)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "token signing failed")
	}
	return jsonResponse(http.StatusOK, map[string]interface{}{
		"order": order,
		"jwt":   jwt,
	})
}

func jsonResponse(status int, v interface{}) Response {
	body, err := json.Marshal(v)
	if err != nil {
		// Only reachable with unmarshalable fixture data, which the seed set
		// never contains.
		return Response{
			Status:      http.StatusInternalServerError,
			ContentType: "application/json",
			Body:        []byte(`{"error":"fixture marshal failure"}`),
		}
	}
	return Response{Status: status, ContentType: "application/json", Body: body}
}

func errorResponse(status int, msg string) Response {
	return jsonResponse(status, map[string]interface{}{"error": msg})
}
