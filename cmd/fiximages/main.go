// Command fiximages reports products whose stored image path does not match
// the path the storefront actually serves.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/config"
	"ecocycle.app/storefront/internal/media"
	"ecocycle.app/storefront/internal/observability"
)

// ProductLister is the backend call the report needs.
type ProductLister interface {
	ListProducts(ctx context.Context) (backend.List[backend.Product], error)
}

// Change is one product whose image path would be rewritten.
type Change struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OldPath string `json:"old"`
	NewPath string `json:"new"`
}

// Report is the outcome of a scan.
type Report struct {
	Scanned int      `json:"scanned"`
	Skipped int      `json:"skipped"`
	Changes []Change `json:"changes"`
}

var (
	envFile  string
	apiURL   string
	asJSON   bool
	logLevel string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fiximages",
		Short:         "Inspect product image paths served by the EcoCycle backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read below the process environment")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	report := &cobra.Command{
		Use:   "report",
		Short: "List products whose stored image differs from the resolved path",
		Long: `Fetches the product list and applies the storefront image resolver to every
product image. Products whose stored path differs from the resolved one are
printed with the old and new path. Nothing is written back.`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}
	report.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	report.Flags().StringVar(&apiURL, "api-url", "", "backend base URL (overrides ECOCYCLE_API_URL)")
	root.AddCommand(report)
	return root
}

func runReport(cmd *cobra.Command, _ []string) error {
	opts := []config.Option{config.WithEnvFile(envFile)}
	if apiURL != "" {
		opts = append(opts, config.WithEnvMap(map[string]string{"ECOCYCLE_API_URL": apiURL}))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ctx := observability.WithLogger(cmd.Context(), logger.Named("fiximages"))

	client, err := backend.New(backend.Options{
		BaseURL:     cfg.Backend.BaseURL,
		Timeout:     cfg.Backend.Timeout,
		TokenScheme: cfg.Backend.TokenScheme,
		OrdersPath:  cfg.Backend.OrdersPath,
	})
	if err != nil {
		return err
	}
	resolver := media.NewResolver(media.Options{
		Placeholder: cfg.Images.Placeholder,
		LocalPrefix: cfg.Images.LocalPrefix,
		MediaPrefix: cfg.Images.MediaPrefix,
	})

	rep, err := buildReport(ctx, client, resolver)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), rep, asJSON)
}

// buildReport lists the products that would change. Products without an image are skipped.
func buildReport(ctx context.Context, client ProductLister, resolver media.Resolver) (Report, error) {
	list, err := client.ListProducts(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list products: %w", err)
	}
	if list.Diagnostic != "" {
		observability.FromContext(ctx).Warn("unexpected product payload", zap.String("diagnostic", list.Diagnostic))
	}

	rep := Report{Scanned: len(list.Items), Changes: []Change{}}
	for _, p := range list.Items {
		old := strings.TrimSpace(p.ImageRef())
		if old == "" {
			rep.Skipped++
			continue
		}
		resolved := resolver.Resolve(old)
		if resolved == old {
			continue
		}
		rep.Changes = append(rep.Changes, Change{
			ID:      p.ID.String(),
			Name:    p.Name,
			OldPath: old,
			NewPath: resolved,
		})
	}
	return rep, nil
}

func writeReport(w io.Writer, rep Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	for _, c := range rep.Changes {
		if _, err := fmt.Fprintf(w, "product %s: %s -> %s\n", c.ID, c.OldPath, c.NewPath); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d of %d products need an image path update\n", len(rep.Changes), rep.Scanned)
	return err
}
