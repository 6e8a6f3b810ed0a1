package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/topics/internal/config"
	"github.com/mmcdole/topics/internal/domain"
	"github.com/mmcdole/topics/internal/forum"
	"github.com/mmcdole/topics/internal/logging"
	"github.com/mmcdole/topics/internal/opener"
	"github.com/mmcdole/topics/internal/pager"
	"github.com/mmcdole/topics/internal/plain"
	"github.com/mmcdole/topics/internal/service"
	"github.com/mmcdole/topics/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// options holds command line overrides
type options struct {
	configPath  string
	listType    string
	node        string
	plain       bool
	pages       int
	metricsAddr string
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "topics",
		Short:         "Browse forum topics in the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, *opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.config/topics/config.yaml)")

	flags := cmd.Flags()
	flags.StringVarP(&opts.listType, "type", "t", "", "list type: last_actived, recent, no_reply, popular, excellent")
	flags.StringVarP(&opts.node, "node", "n", "", "only list topics in this node (id or name)")
	flags.BoolVar(&opts.plain, "plain", false, "print topics instead of starting the interactive browser")
	flags.IntVarP(&opts.pages, "pages", "p", 1, "pages to print in plain mode")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage topics configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at: %s\n", path)
					fmt.Fprintln(cmd.OutOrStdout(), "Use --force to overwrite.")
					return nil
				}
			}
			written, err := config.SaveConfig(config.DefaultConfig(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration written to %s\n", written)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	nodeQuery, err := applyFlags(cfg, cmd, opts)
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(&cfg.Logging)
	if err != nil {
		// Fall back to a no-op logger if file logging fails
		logger = logging.Nop()
	} else {
		defer closer.Close()
	}

	logger.Info().Str("version", Version).Str("server", cfg.Server.URL).Msg("starting topics")

	if cfg.Metrics.Addr != "" {
		srv := startMetrics(cfg.Metrics.Addr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	client, err := forum.NewClient(forum.Options{
		BaseURL:   cfg.Server.URL,
		Timeout:   cfg.Server.Timeout,
		Retries:   cfg.Server.Retries,
		UserAgent: cfg.Server.UserAgent,
		Logger:    logging.NewLogger(logger, "forum"),
	})
	if err != nil {
		return fmt.Errorf("failed to create forum client: %w", err)
	}

	titles := service.NewTitleService(client, logger)
	nodes := service.NewNodeService(client, logger)

	if nodeQuery != "" {
		id, err := resolveNode(ctx, nodes, nodeQuery)
		if err != nil {
			return err
		}
		logger.Info().Str("query", nodeQuery).Int64("node_id", id).Msg("resolved node")
		cfg.List.NodeID = id
	}
	filter := cfg.Filter()

	if opts.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		ctrl := pager.New(client, filter,
			pager.WithLimit(cfg.List.PageSize),
			pager.WithTimeout(cfg.List.FetchTimeout),
			pager.WithLogger(logger),
		)
		defer ctrl.Close()

		title := titles.ResolveAsync(ctx, filter)
		printer := plain.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
		return printer.Print(ctx, ctrl, title, titles.Placeholder(filter), opts.pages)
	}

	browser, err := opener.New(cfg.SiteURL(), cfg.Browser.Command, cfg.Browser.Args, logger)
	if err != nil {
		return fmt.Errorf("failed to create opener: %w", err)
	}

	model := tui.NewModel(tui.Deps{
		Topics:   client,
		Titles:   titles,
		Nodes:    nodes,
		Opener:   browser,
		Logger:   logger,
		PageSize: cfg.List.PageSize,
		Timeout:  cfg.List.FetchTimeout,
	}, filter)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	logger.Info().Msg("starting TUI")

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error().Err(err).Msg("TUI error")
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info().Msg("shutting down")
	return nil
}

// applyFlags layers explicitly set command line flags over the configuration.
// A --node value that is not a number is returned as a name to resolve.
func applyFlags(cfg *config.Config, cmd *cobra.Command, opts options) (string, error) {
	flags := cmd.Flags()
	if flags.Changed("type") {
		lt, err := domain.ParseListType(opts.listType)
		if err != nil {
			return "", err
		}
		cfg.List.Type = string(lt)
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.pages < 1 {
		return "", fmt.Errorf("--pages must be at least 1")
	}

	if !flags.Changed("node") {
		return "", nil
	}
	node := strings.TrimSpace(opts.node)
	if node == "" {
		return "", fmt.Errorf("--node must not be empty")
	}
	id, err := strconv.ParseInt(node, 10, 64)
	if err != nil {
		return node, nil
	}
	if id < 0 {
		return "", fmt.Errorf("--node must not be negative")
	}
	cfg.List.NodeID = id
	return "", nil
}

// resolveNode picks the best fuzzy match for a node name
func resolveNode(ctx context.Context, nodes *service.NodeService, query string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	matches, err := nodes.Search(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to look up node %q: %w", query, err)
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: nothing matches %q", domain.ErrNodeNotFound, query)
	}
	return matches[0].ID, nil
}

func startMetrics(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")
	return srv
}
