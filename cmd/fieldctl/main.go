// fieldctl is the technician command line client. It talks to the workflow
// platform directly and keeps its session in a per-user directory, one file
// per key.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/lanoanh-osi/ServiceOps/internal/config"
	"github.com/lanoanh-osi/ServiceOps/internal/observability"
	"github.com/lanoanh-osi/ServiceOps/internal/service"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if de := apperrors.ToDomainError(err); de.Code != "INTERNAL_ERROR" {
			fmt.Fprintf(os.Stderr, "error: %s\n", de.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":  {"authenticate and store the session", runLogin},
	"logout": {"clear the stored session", runLogout},
	"whoami": {"print the logged-in technician", runWhoami},
	"list":   {"list tickets of a category tab", runList},
	"show":   {"print one ticket as JSON", runShow},
	"accept": {"accept a delivery or maintenance ticket", runAccept},
	"counts": {"print ticket counts per category and status", runCounts},
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var baseURL, sessionDir string
	var verbose bool

	flagSet := pflag.NewFlagSet("fieldctl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(out)
	flagSet.StringVar(&baseURL, "base-url", "", "workflow platform base URL (default $WEBHOOK_BASE_URL)")
	flagSet.StringVar(&sessionDir, "session-dir", "", "session directory (default <user config dir>/fieldctl)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log webhook traffic to stderr")
	flagSet.Usage = func() { printUsage(out, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(out, flagSet)
		return apperrors.NewValidationError("missing command", nil)
	}
	cmd, found := commands[rest[0]]
	if !found {
		return apperrors.NewValidationError(fmt.Sprintf("unknown command %q", rest[0]), nil)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if baseURL == "" {
		baseURL = cfg.Webhook.BaseURL
	}
	if baseURL == "" {
		return apperrors.NewValidationError("no base URL: pass --base-url or set WEBHOOK_BASE_URL", nil)
	}
	if sessionDir == "" {
		if sessionDir, err = defaultSessionDir(); err != nil {
			return err
		}
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = observability.NewLogger(config.LoggerConfig{Level: "debug"}); err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
	}

	a, err := newApp(baseURL, sessionDir, cfg.Webhook.Timeout(), logger, out)
	if err != nil {
		return err
	}
	return cmd.run(ctx, a, rest[1:])
}

func defaultSessionDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "fieldctl"), nil
}

func printUsage(out io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(out, "Usage: fieldctl [flags] <command> [command flags]\n\nCommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(out, "\nFlags:\n%s", flagSet.FlagUsages())
}

// app is the wired library core shared by every command.
type app struct {
	store   session.Store
	manager *session.Manager
	tickets *service.TicketService
	actions *service.ActionService
	out     io.Writer
}

func newApp(baseURL, sessionDir string, timeout time.Duration, logger *zap.Logger, out io.Writer) (*app, error) {
	client, err := webhook.NewClient(webhook.Config{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	store, err := session.NewFileStore(sessionDir)
	if err != nil {
		return nil, err
	}
	return &app{
		store:   store,
		manager: session.NewManager(client, logger),
		tickets: service.NewTicketService(service.TicketDependencies{Client: client, Logger: logger}),
		actions: service.NewActionService(service.ActionDependencies{Client: client, Logger: logger}),
		out:     out,
	}, nil
}

// session returns the stored session or an unauthorized error.
func (a *app) session(ctx context.Context) (session.Session, error) {
	sess, err := a.manager.Current(ctx, a.store)
	if err != nil {
		return session.LoggedOut, err
	}
	if sess.IsLoggedOut() {
		return session.LoggedOut, apperrors.NewUnauthorized("not logged in; run fieldctl login")
	}
	return sess, nil
}
