package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/klipach/fbtoken/config"
	"github.com/klipach/fbtoken/credential"
	"github.com/klipach/fbtoken/identity"
	"github.com/klipach/fbtoken/log"
	"github.com/klipach/fbtoken/logger"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitRejected = 2
)

type app struct {
	stdout  io.Writer
	stderr  io.Writer
	cfg     *config.Config
	closers []func() error
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	defer a.close()

	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	if errors.Is(err, identity.ErrExchangeRejected) {
		return exitRejected
	}
	return exitFailure
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fbtoken",
		Short:         "Get Firebase refresh tokens for Google service accounts",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP(config.OutputKey, "o", config.OutputText, "output format: text or json")
	pf.String(config.LogLevelKey, "info", "log level: debug, info, warn or error")
	pf.Bool(config.CloudLoggingKey, false, "also send logs to Google Cloud Logging")
	pf.String(config.TraceKey, "", "Cloud Trace resource name (projects/<project>/traces/<id>) attached to every log entry")

	cmd.AddCommand(
		a.getRefreshTokenCmd(),
		a.customTokenCmd(),
		a.privateKeyIDCmd(),
		a.decodeCmd(),
		a.signInWithPasswordCmd(),
	)
	return cmd
}

// setup resolves the configuration and installs the logger into the command context.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	handlers := []slog.Handler{log.NewCloudLoggingHandler(a.stderr, level)}
	if cfg.CloudLogging {
		h, err := a.cloudHandler(cmd.Context(), level)
		if err != nil {
			return err
		}
		handlers = append(handlers, h)
	}
	l := slog.New(log.Fanout(handlers...))
	if cfg.Trace != "" {
		l = l.With(log.Trace(cfg.Trace))
	}
	cmd.SetContext(log.WithLogger(cmd.Context(), l))
	return nil
}

func (a *app) cloudHandler(ctx context.Context, level slog.Level) (slog.Handler, error) {
	var (
		projectID string
		opts      []option.ClientOption
	)
	if a.cfg.PrivateKeyJSON != "" {
		cred, err := credential.Load(a.cfg.PrivateKeyJSON)
		if err != nil {
			return nil, err
		}
		projectID = cred.ProjectID
		opts = append(opts, option.WithCredentialsJSON(cred.JSON()))
	}
	client, err := logger.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return logger.NewCloudHandler(client.Logger(logger.LogName), level), nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			fmt.Fprintf(a.stderr, "Error: flushing logs: %v\n", err)
		}
	}
}

func (a *app) identityOptions() []identity.Option {
	if a.cfg.IdentityURL == "" {
		return nil
	}
	return []identity.Option{identity.WithBaseURL(a.cfg.IdentityURL)}
}
