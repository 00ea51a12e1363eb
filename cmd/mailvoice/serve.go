package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hal9000y/mailvoice/internal/auth"
	"github.com/hal9000y/mailvoice/internal/automation"
	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/config"
	"github.com/hal9000y/mailvoice/internal/dispatch"
	"github.com/hal9000y/mailvoice/internal/gservice"
	"github.com/hal9000y/mailvoice/internal/metrics"
	"github.com/hal9000y/mailvoice/internal/service"
	"github.com/hal9000y/mailvoice/internal/store"
	"github.com/hal9000y/mailvoice/internal/tool"
)

type serveOptions struct {
	configPath string
	envFile    string
	stdio      bool
	logFile    string
	verbose    bool
}

func buildServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server on HTTP (/mcp), with the OAuth callback on /oauth
and Prometheus metrics on /metrics. With --stdio the MCP server also runs on
stdin/stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config file")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Path to env file")
	cmd.Flags().BoolVar(&opts.stdio, "stdio", false, "Enable stdio transport for MCP (disables stdout logging)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Path to log file (otherwise logs to stdout, or nowhere with --stdio)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return err
	}
	if err := cfg.RequireOAuth(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	log, err := newLogger(opts.stdio, opts.logFile, opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("net.Listen failed: %w", err)
	}

	redirectURL := cfg.OAuth.RedirectURL
	if redirectURL == "" {
		redirectURL = fmt.Sprintf("http://%s/oauth", ln.Addr().String())
	}
	oauthCfg := auth.NewConfig(cfg.OAuth.ClientID, cfg.OAuth.ClientSecret, redirectURL)

	tok, err := auth.NewToken(oauthCfg, cfg.OAuth.TokenFile, log)
	if err != nil {
		return fmt.Errorf("auth.NewToken failed: %w", err)
	}
	defer func() {
		log.Info("Persisting token if exists")
		if err := tok.Persist(); err != nil {
			log.Error("tok.Persist failed", zap.Error(err))
		}
	}()

	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("store.Open failed: %w", err)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	gm := gservice.NewGmail(oauthCfg, tok)
	email := service.NewEmail(gm, st, service.WithLogger(log))
	campaigns := service.NewCampaigns(st, email, service.WithLogger(log))
	auto := automation.NewService(st, automation.WithLogger(log), automation.WithLocation(loc))

	if err := auto.SyncRules(ctx, cfg.UserID, cfg.AutomationRules()); err != nil {
		return fmt.Errorf("auto.SyncRules failed: %w", err)
	}

	d := dispatch.New(dispatch.Services{
		Email:      email,
		Search:     service.NewSearch(gm),
		Templates:  service.NewTemplates(st),
		Campaigns:  campaigns,
		Analytics:  service.NewAnalytics(st),
		Automation: auto,
	},
		dispatch.WithLogger(log),
		dispatch.WithMetrics(rec),
		dispatch.WithListLimit(cfg.Dispatch.ListLimit),
	)

	mcpSrv := tool.NewServer(tool.Deps{
		Parser:        command.NewParser(command.DefaultTable()),
		Executor:      d,
		Reader:        gm,
		Campaigns:     campaigns,
		Metrics:       rec,
		DefaultUserID: cfg.UserID,
	})

	mux := http.NewServeMux()
	mux.Handle("/oauth", auth.NewHTTPHandler(tok, log))
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return mcpSrv }, nil))
	mux.Handle("/metrics", metrics.Handler(reg))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !cfg.Scheduler.Disabled {
		sched := automation.NewScheduler(st, email, cfg.Scheduler.Spec, automation.WithLogger(log))
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(shutdown)

	if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
		openBrowser(log, redirectURL)
	}

	stopHTTP, errHTTPCh := serveHTTP(log, srv, ln)
	defer stopHTTP()

	var errStdioCh <-chan error
	if opts.stdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(ctx, log, mcpSrv)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		return err
	case err := <-errStdioCh:
		return err
	case <-shutdown:
		log.Info("Shutdown signal received")
	case <-ctx.Done():
	}
	return nil
}

func serveStdio(ctx context.Context, log *zap.Logger, srv *mcp.Server) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(errStdioCh)
		log.Info("Starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		log.Info("Stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(log *zap.Logger, srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		log.Info("Starting http server", zap.String("addr", ln.Addr().String()))

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errHTTPCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("srv.Shutdown failed", zap.Error(err))
		}

		<-errHTTPCh
		log.Info("HTTP server stopped")
	}, errHTTPCh
}

func openBrowser(log *zap.Logger, url string) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		log.Warn("Could not open browser automatically, please open the link manually",
			zap.Error(err), zap.String("url", url))
	}
}
