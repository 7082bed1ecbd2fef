package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/budgetbloom/cardledger/internal/adapter/htmldom"
	"github.com/budgetbloom/cardledger/internal/adapter/http/dto"
	"github.com/budgetbloom/cardledger/internal/adapter/idgen"
	"github.com/budgetbloom/cardledger/internal/adapter/loader"
	"github.com/budgetbloom/cardledger/internal/domain"
	"github.com/budgetbloom/cardledger/internal/extractor"
	"github.com/budgetbloom/cardledger/internal/infrastructure/config"
	"github.com/budgetbloom/cardledger/internal/infrastructure/logger"
	"github.com/budgetbloom/cardledger/internal/infrastructure/metrics"
	"github.com/budgetbloom/cardledger/internal/usecase"
)

// SessionKeyEnv is read when --skey is not given.
const SessionKeyEnv = "CARDLEDGER_SKEY"

type globalOptions struct {
	baseURL    string
	sessionKey string
	logLevel   string
	timeout    time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "cardledger",
		Short:         "Campus card statement reader",
		Long:          `Reads meal plan, dining dollar and stored value balances from campus card statement pages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "", "Statement service or relay base URL (default from LOADER_BASE_URL / UPSTREAM_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.sessionKey, "skey", "", "Session key (default from "+SessionKeyEnv+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "Request timeout (default from FETCH_TIMEOUT)")

	rootCmd.AddCommand(parseCmd(opts), fetchCmd(opts), historyCmd(opts), watchCmd(opts))

	return rootCmd
}

func parseCmd(opts *globalOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Extract a snapshot from a saved statement page (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			x, err := newExtractor(cfg, newLogger(opts))
			if err != nil {
				return err
			}

			doc := domain.NewRawDocument(idgen.NewULIDGenerator().Generate(), args[0], body, time.Now())
			balances, entries := x.Extract(doc)

			if raw {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"balances": dto.BalancesFromDomain(balances),
					"entries":  dto.EntriesFromDomain(entries),
				})
			}
			return printJSON(cmd.OutOrStdout(), dto.SnapshotFromDomain(usecase.Assemble(balances, entries, time.Now())))
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print every extracted balance and entry instead of the snapshot")

	return cmd
}

func fetchCmd(opts *globalOptions) *cobra.Command {
	var scope domain.Scope
	var statement bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and print the current snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, key, err := newSnapshotUseCase(opts)
			if err != nil {
				return err
			}
			if statement {
				scope.Page = domain.PageStatement
			}

			snapshot, err := uc.GetSnapshot(cmd.Context(), usecase.SnapshotInput{SessionKey: key, Scope: scope, Refresh: true})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dto.SnapshotFromDomain(snapshot))
		},
	}

	cmd.Flags().BoolVar(&statement, "statement", false, "Read the statement detail page instead of the balance page")
	cmd.Flags().StringVar(&scope.Account, "acct", "", "Statement account number")
	cmd.Flags().StringVar(&scope.StartDate, "start", "", "Statement start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&scope.EndDate, "end", "", "Statement end date (YYYY-MM-DD)")

	return cmd
}

func historyCmd(opts *globalOptions) *cobra.Command {
	var (
		input    usecase.HistoryInput
		accounts []string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print transaction history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, key, err := newSnapshotUseCase(opts)
			if err != nil {
				return err
			}

			input.SessionKey = key
			if cmd.Flags().Changed("account") {
				input.Markers = accountMarkers(accounts)
			}

			entries, err := uc.History(cmd.Context(), input)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(w, "%-20s %-32s %10s %10s  %s\n",
					e.RawDate, truncate(e.Description, 32), e.Amount.StringFixed(2), e.RunningBalance.StringFixed(2), e.AccountLabel)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&accounts, "account", nil, "Account label filters (default meal,150; * for all)")
	cmd.Flags().StringVar(&input.Account, "acct", "", "Statement account number")
	cmd.Flags().StringVar(&input.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.EndDate, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&input.Limit, "limit", 0, "Maximum entries (0 for all)")

	return cmd
}

func watchCmd(opts *globalOptions) *cobra.Command {
	var (
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the balance page and print each refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, key, err := newSnapshotUseCase(opts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			w := cmd.OutOrStdout()
			updates := 0
			tracker := usecase.NewTracker(usecase.TrackerConfig{
				Source:     uc,
				SessionKey: key,
				Interval:   interval,
				Logger:     newLogger(opts),
				OnUpdate: func(s domain.AccountSnapshot) {
					fmt.Fprintln(w, formatSnapshotLine(s))
					updates++
					if count > 0 && updates >= count {
						cancel()
					}
				},
			})

			if err := tracker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", usecase.DefaultTrackerInterval, "Polling interval")
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many updates (0 runs until interrupted)")

	return cmd
}

func newLogger(opts *globalOptions) zerolog.Logger {
	return logger.New(logger.Config{Level: opts.logLevel, Format: "console", Output: os.Stderr})
}

func newExtractor(cfg *config.Config, log zerolog.Logger) (*extractor.Extractor, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return extractor.New(htmldom.NewParser(), extractor.Options{
		SummaryMarkers:    cfg.SummaryMarkers,
		IncludeDeposits:   cfg.IncludeDeposits,
		StatementFallback: cfg.StatementFallback,
		Location:          loc,
	}, log), nil
}

// newSnapshotUseCase wires the uncached pipeline used by the network commands.
func newSnapshotUseCase(opts *globalOptions) (*usecase.SnapshotUseCase, string, error) {
	key := opts.sessionKey
	if key == "" {
		key = os.Getenv(SessionKeyEnv)
	}
	if err := domain.ValidateSessionKey(key); err != nil {
		return nil, "", fmt.Errorf("%w (use --skey or %s)", err, SessionKeyEnv)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	log := newLogger(opts)

	baseURL := opts.baseURL
	if baseURL == "" {
		baseURL = cfg.LoaderURL()
	}
	timeout := opts.timeout
	if timeout == 0 {
		timeout = cfg.FetchTimeout
	}

	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	httpLoader := loader.New(loader.Config{
		BaseURL:   baseURL,
		CampusID:  cfg.CampusID,
		Account:   cfg.StatementAccount,
		UserAgent: cfg.LoaderUserAgent,
		Timeout:   timeout,
	}, nil, idgen.NewULIDGenerator(), m, log)

	x, err := newExtractor(cfg, log)
	if err != nil {
		return nil, "", err
	}

	uc := usecase.NewSnapshotUseCase(usecase.SnapshotConfig{
		Loader:    loader.NewRetryingLoader(httpLoader, cfg.FetchMaxRetries, m, log),
		Extractor: x,
		Metrics:   m,
		Logger:    log,
	})

	return uc, key, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// accountMarkers turns --account values into history filters; "*" selects every account.
func accountMarkers(values []string) []string {
	markers := []string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "*" {
			return []string{}
		}
		if v != "" {
			markers = append(markers, v)
		}
	}
	if len(markers) == 0 {
		return nil
	}
	return markers
}

func formatSnapshotLine(s domain.AccountSnapshot) string {
	return fmt.Sprintf("%s  swipes=%s dining=$%s stored=$%s entries=%d",
		s.LastUpdated.Format(time.RFC3339), s.MealSwipes.String(), s.DiningDollars.StringFixed(2), s.StoredValue.StringFixed(2), len(s.RecentEntries))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
