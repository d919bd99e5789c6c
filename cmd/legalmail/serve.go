package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hal9000y/legalmail-mcp/internal/auth"
	"github.com/hal9000y/legalmail-mcp/internal/format"
	"github.com/hal9000y/legalmail-mcp/internal/gservice"
	"github.com/hal9000y/legalmail-mcp/internal/tool"
)

func newServeCmd(a *app) *cobra.Command {
	var withGmail bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the triage tools over the MCP stdio transport",
		Long: `Serve exposes analyze_email, draft_reply and process_email over stdio.

With --gmail it also exposes search_inbox, triage_messages and
read_contract_attachments, and starts an HTTP server on --http-addr that
handles the Google OAuth callback on /oauth.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if !withGmail {
				return a.serve(ctx, tool.NewServer(a.agent, nil, format.Converter{}), nil)
			}
			return a.serveGmail(ctx)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&withGmail, "gmail", false, "Enable the Gmail tools")
	flags.String("http-addr", "localhost:0", "HTTP server listen addr for the OAuth callback")
	flags.String("oauth-url", "", "OAuth redirect URL, defaults to /oauth on the HTTP server")
	flags.String("oauth-token-file", "./data/legalmail-token.json", "Path to cache the Google OAuth token, empty to avoid storing")

	return cmd
}

func (a *app) serveGmail(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("net.Listen failed: %w", err)
	}

	oauthCfg, err := a.cfg.GmailOAuth(ln.Addr().String())
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("cfg.GmailOAuth failed: %w", err)
	}

	tok, err := auth.NewToken(oauthCfg, a.cfg.OAuthTokenFile, a.logger)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("auth.NewToken failed: %w", err)
	}

	defer func() {
		a.logger.Info("Persisting token if exists")
		if err := tok.Persist(); err != nil {
			a.logger.Error("tok.Persist failed", zap.Error(err))
		}
	}()

	srv := tool.NewServer(a.agent, gservice.NewGmail(tok), format.Converter{})

	mux := http.NewServeMux()
	mux.Handle("/oauth", auth.NewHTTPHandler(tok, a.logger))

	if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
		a.openBrowser(oauthCfg.RedirectURL)
	}

	return a.serve(ctx, srv, &httpListener{srv: &http.Server{Handler: mux}, ln: ln})
}

type httpListener struct {
	srv *http.Server
	ln  net.Listener
}

// serve runs the stdio transport, plus the HTTP server when hl is set, until
// either fails or ctx is done.
func (a *app) serve(ctx context.Context, srv *mcp.Server, hl *httpListener) error {
	var errHTTPCh <-chan error
	if hl != nil {
		var stopHTTP func()
		stopHTTP, errHTTPCh = a.serveHTTP(hl.srv, hl.ln)
		defer stopHTTP()
	}

	stopStdio, errStdioCh := a.serveStdio(ctx, srv)
	defer stopStdio()

	select {
	case err := <-errHTTPCh:
		return err
	case err := <-errStdioCh:
		return err
	case <-ctx.Done():
		a.logger.Info("Shutdown signal received")
		return nil
	}
}

func (a *app) serveStdio(ctx context.Context, srv *mcp.Server) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(errStdioCh)
		a.logger.Info("Starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		a.logger.Info("Stdio transport stopped")
	}, errStdioCh
}

func (a *app) serveHTTP(srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		a.logger.Info("Starting http server", zap.String("addr", ln.Addr().String()))

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errHTTPCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("srv.Shutdown failed", zap.Error(err))
		}

		<-errHTTPCh
		a.logger.Info("HTTP server stopped")
	}, errHTTPCh
}

func (a *app) openBrowser(url string) {
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
		a.logger.Warn("Could not open browser automatically, please open the link manually",
			zap.String("url", url), zap.Error(err))
	}
}
