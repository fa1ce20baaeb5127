package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeshift/edgeshift/internal/config"
	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/metrics"
	"github.com/edgeshift/edgeshift/internal/monitor"
	"github.com/edgeshift/edgeshift/internal/report"
	"github.com/edgeshift/edgeshift/internal/scan"
	"github.com/edgeshift/edgeshift/internal/telemetry"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Inventory the account and write migration reports",
	Long: `Discover a working contract/group pairing, walk every property for its
hostnames, fetch CPS enrollments and WAF configurations, and write CSV,
JSON, and per-apex checklist reports.

Credentials come from the environment:
  AKAMAI_HOST, AKAMAI_CLIENT_TOKEN, AKAMAI_CLIENT_SECRET, AKAMAI_ACCESS_TOKEN
  AKAMAI_ACCOUNT_SWITCH_KEY (optional)

Exit codes:
  0  Reports written
  1  Property discovery failed
  2  Missing EdgeGrid credentials`,
	Example: `  # Basic inventory
  edgeshift scan

  # Include rule-tree classification and the optional products
  edgeshift scan --include-rules --include-products

  # Reseller scanning a customer account
  edgeshift scan --account-switch-key 1-ABC123:1-XYZ

  # Drop Prometheus run stats for the textfile collector
  edgeshift scan --metrics-file /var/lib/node_exporter/edgeshift.prom`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("config", "", "Path to config file")
	scanCmd.Flags().String("out-dir", "", "Output directory for reports (default ./out)")
	scanCmd.Flags().Bool("include-rules", false, "Fetch and classify rules for caching/redirects/headers/HSTS")
	scanCmd.Flags().Bool("include-products", false, "Enumerate Edge DNS zones, GTM, EdgeWorkers, Cloudlets, Cloud Wrapper")
	scanCmd.Flags().String("account-switch-key", "", "Account switch key (overrides AKAMAI_ACCOUNT_SWITCH_KEY)")
	scanCmd.Flags().String("metrics-file", "", "Write Prometheus run stats to this textfile")
	scanCmd.Flags().Bool("plain", false, "Unstyled summary output, for piping")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg := config.Defaults()
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// Flags override the config file.
	outDir, _ := cmd.Flags().GetString("out-dir") //nolint:errcheck // flag registered above
	if outDir != "" {
		cfg.OutDir = outDir
	}
	if cmd.Flags().Changed("include-rules") {
		cfg.IncludeRules, _ = cmd.Flags().GetBool("include-rules") //nolint:errcheck // flag registered above
	}
	if cmd.Flags().Changed("include-products") {
		cfg.IncludeProducts, _ = cmd.Flags().GetBool("include-products") //nolint:errcheck // flag registered above
	}
	metricsFile, _ := cmd.Flags().GetString("metrics-file") //nolint:errcheck // flag registered above
	if metricsFile != "" {
		cfg.MetricsFile = metricsFile
	}

	creds, err := config.CredentialsFromEnv()
	if err != nil {
		var missing *config.MissingCredentialsError
		if errors.As(err, &missing) {
			fmt.Fprintln(os.Stderr, "Missing EdgeGrid env vars. Please set:")
			for _, v := range missing.Vars {
				fmt.Fprintln(os.Stderr, "  "+v)
			}
			os.Exit(2)
		}
		return err
	}
	switchKey, _ := cmd.Flags().GetString("account-switch-key") //nolint:errcheck // flag registered above
	if switchKey != "" {
		creds.AccountSwitchKey = switchKey
	}

	if !creds.HostLooksStandard() {
		slog.Warn("host doesn't look like a standard Akamai hostname", "host", creds.Host)
	}
	slog.Info("connecting to Akamai", "host", creds.Host)
	if creds.AccountSwitchKey != "" {
		slog.Info("using account switch key", "prefix", keyPrefix(creds.AccountSwitchKey))
	}

	stats := metrics.New()
	client := edge.New(creds, edge.WithRequestHook(stats.CountRequest))

	otelEndpoint, _ := cmd.Flags().GetString("otel-endpoint") //nolint:errcheck // flag registered above
	tracer, tracerShutdown, tracerErr := telemetry.Setup(context.Background(), otelEndpoint, version)
	if tracerErr != nil {
		slog.Warn("initializing tracer", "err", tracerErr)
	} else {
		defer tracerShutdown(context.Background()) //nolint:errcheck // best-effort flush
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ScanTimeout)
	defer cancel()

	scanner := scan.New(client, scan.Options{
		IncludeRules:    cfg.IncludeRules,
		IncludeProducts: cfg.IncludeProducts,
	}, scan.WithTracer(tracer))

	start := time.Now()
	res, err := scanner.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch properties: %w", err)
	}
	slog.Info("scan complete",
		"properties", res.PropertyCount,
		"hostnames", len(res.Inventory.Hostnames),
		"degraded", len(res.Inventory.Errors))

	if err := report.WriteAll(res.Inventory, cfg.OutDir, cfg.IncludeProducts); err != nil {
		return fmt.Errorf("writing reports: %w", err)
	}

	stats.ObserveInventory(res.Inventory, res.PropertyCount, time.Since(start))
	if cfg.MetricsFile != "" {
		if werr := stats.WriteTextfile(cfg.MetricsFile); werr != nil {
			slog.Warn("writing metrics textfile", "path", cfg.MetricsFile, "err", werr)
		}
	}

	plain, _ := cmd.Flags().GetBool("plain") //nolint:errcheck // flag registered above
	if plain {
		fmt.Print(monitor.PlainText(res.Inventory, cfg.OutDir))
	} else {
		fmt.Print(monitor.Summary(res.Inventory, cfg.OutDir))
	}
	return nil
}

// keyPrefix truncates a switch key for logging; the full key is account data.
func keyPrefix(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}
