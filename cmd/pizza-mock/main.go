package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sophiebushman1/jwt-pizza/internal/fixture"
	"github.com/sophiebushman1/jwt-pizza/internal/mockhttp"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pizza-mock",
	Short: "Standalone mock of the JWT Pizza backend",
	Long: `pizza-mock serves the same scripted pizza backend the browser test suite
installs via request interception, but over real HTTP. Point the front-end's
API base URL at it to develop against stable, deterministic data.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mock backend over HTTP",
	RunE:  runServe,
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders recorded by a previous serve run",
	RunE:  runOrders,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pizza-mock %s\n", rootCmd.Version)
	},
}

var (
	addrFlag       string
	fixturesFlag   string
	orderLogFlag   string
	strictFlag     bool
	signSecretFlag string
	limitFlag      int
)

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", ":3000", "Listen address")
	serveCmd.Flags().StringVar(&fixturesFlag, "fixtures", "", "YAML fixture file to load and watch for changes")
	serveCmd.Flags().StringVar(&orderLogFlag, "order-log", "", "SQLite file to record submitted orders into")
	serveCmd.Flags().BoolVar(&strictFlag, "strict", false, "Validate request bodies against their JSON schemas")
	serveCmd.Flags().StringVar(&signSecretFlag, "sign-secret", "", "Sign auth tokens and order JWTs with this HS256 secret instead of the fixed constants")

	ordersCmd.Flags().StringVar(&orderLogFlag, "order-log", "orders.db", "SQLite file written by serve --order-log")
	ordersCmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of orders to show")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindEnv lets PIZZA_MOCK_* environment variables stand in for flags the user
// did not pass, e.g. PIZZA_MOCK_ADDR=:8080 pizza-mock serve.
func bindEnv(cmd *cobra.Command) {
	v := viper.New()
	v.SetEnvPrefix("PIZZA_MOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, name := range []string{"addr", "fixtures", "order-log", "strict", "sign-secret"} {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}
		_ = v.BindEnv(name)
		if v.IsSet(name) {
			_ = cmd.Flags().Set(name, v.GetString(name))
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	bindEnv(cmd)

	opts := []fixture.Option{}
	if strictFlag {
		opts = append(opts, fixture.WithContracts())
	}
	if signSecretFlag != "" {
		opts = append(opts, fixture.WithSignedTokens(signSecretFlag))
	}
	if fixturesFlag != "" {
		data, err := fixture.LoadData(fixturesFlag)
		if err != nil {
			return err
		}
		opts = append(opts, fixture.WithData(data))
	}
	backend := fixture.New(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if fixturesFlag != "" {
		if err := mockhttp.WatchFixtures(ctx, backend, fixturesFlag); err != nil {
			return err
		}
		log.Printf("serving fixture data from %s (watching for changes)", fixturesFlag)
	}

	serverOpts := []mockhttp.ServerOption{}
	if orderLogFlag != "" {
		orderLog, err := mockhttp.OpenOrderLog(orderLogFlag)
		if err != nil {
			return err
		}
		defer orderLog.Close()
		serverOpts = append(serverOpts, mockhttp.WithOrderLog(orderLog))
		log.Printf("recording orders to %s", orderLogFlag)
	}

	srv := &http.Server{
		Addr:              addrFlag,
		Handler:           mockhttp.NewServer(backend, serverOpts...).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("pizza-mock listening on %s", addrFlag)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Println("shutting down pizza-mock...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("pizza-mock stopped")
	return nil
}

func runOrders(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(orderLogFlag); err != nil {
		return fmt.Errorf("order log %s not found; run serve --order-log first", orderLogFlag)
	}

	orderLog, err := mockhttp.OpenOrderLog(orderLogFlag)
	if err != nil {
		return err
	}
	defer orderLog.Close()

	ctx := context.Background()
	total, err := orderLog.Count(ctx)
	if err != nil {
		return err
	}
	records, err := orderLog.Recent(ctx, limitFlag)
	if err != nil {
		return err
	}

	fmt.Printf("%d order(s) recorded, showing %d\n", total, len(records))
	for _, r := range records {
		fmt.Printf("#%d  %s  %s\n", r.ID, r.ReceivedAt.Format(time.RFC3339), r.Body)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
