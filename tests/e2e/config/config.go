package config

import (
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// TestConfig holds all configuration for the browser test suite.
type TestConfig struct {
	BaseURL     string
	Timeout     time.Duration
	Headless    bool
	SlowMo      float64
	Screenshots bool
	Videos      bool
}

var (
	loadOnce sync.Once
	cached   *TestConfig
)

// GetConfig resolves the suite configuration once per test binary:
// defaults, then an optional .env file, then PIZZA_* environment
// variables (bare BASE_URL/HEADLESS also work, for CI scripts that
// already export them).
func GetConfig() *TestConfig {
	loadOnce.Do(func() { cached = load() })
	return cached
}

func load() *TestConfig {
	v := viper.New()

	v.SetDefault("base_url", "http://localhost:5173")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("headless", true)
	v.SetDefault("slow_mo", 0.0)
	v.SetDefault("screenshots", true)
	v.SetDefault("videos", false)
	v.SetDefault("autodetect", true)

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// The .env file is optional; environment variables alone are fine.
	_ = v.ReadInConfig()

	v.SetEnvPrefix("PIZZA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("base_url", "PIZZA_BASE_URL", "BASE_URL")
	_ = v.BindEnv("headless", "PIZZA_HEADLESS", "HEADLESS")
	_ = v.BindEnv("screenshots", "PIZZA_SCREENSHOTS", "SCREENSHOTS")
	_ = v.BindEnv("videos", "PIZZA_VIDEOS", "VIDEOS")
	_ = v.BindEnv("autodetect", "PIZZA_AUTODETECT")

	baseURL := v.GetString("base_url")
	if v.GetBool("autodetect") {
		baseURL = detectReachableBaseURL(baseURL)
	}
	log.Printf("[e2e-config] resolved BaseURL=%s", baseURL)

	return &TestConfig{
		BaseURL:     baseURL,
		Timeout:     v.GetDuration("timeout"),
		Headless:    v.GetBool("headless"),
		SlowMo:      v.GetFloat64("slow_mo"),
		Screenshots: v.GetBool("screenshots"),
		Videos:      v.GetBool("videos"),
	}
}

// detectReachableBaseURL keeps the configured URL when it answers, otherwise
// probes the ports the pizza front-end is usually served on: 5173 (vite dev),
// 4173 (vite preview) and 3000.
func detectReachableBaseURL(initial string) string {
	start := time.Now()
	if Reachable(initial) {
		return initial
	}

	candidates := []string{}
	for _, host := range []string{"localhost", "127.0.0.1"} {
		for _, port := range []string{"5173", "4173", "3000"} {
			candidates = append(candidates, "http://"+host+":"+port)
		}
	}

	tried := []string{initial}
	for _, c := range candidates {
		if c == initial {
			continue
		}
		tried = append(tried, c)
		if Reachable(c) {
			log.Printf("[e2e-config] auto-detect switched BaseURL %s -> %s (%.0fms)", initial, c, time.Since(start).Seconds()*1000)
			return c
		}
	}
	log.Printf("[e2e-config] auto-detect kept unreachable BaseURL=%s (tried=%v in %.0fms)", initial, tried, time.Since(start).Seconds()*1000)
	return initial
}

// Reachable reports whether an HTTP server answers at base. Scenario tests
// use it to skip cleanly when no front-end is running.
func Reachable(base string) bool {
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	host := u.Host
	if !strings.Contains(host, ":") {
		host += ":80"
	}
	d := net.Dialer{Timeout: 250 * time.Millisecond}
	conn, err := d.Dial("tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()

	// The front-end is a SPA, so any path answers; "/" is enough.
	client := &http.Client{Timeout: 800 * time.Millisecond}
	resp, err := client.Get(base + "/")
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
