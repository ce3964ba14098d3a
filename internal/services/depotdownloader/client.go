// Package depotdownloader drives the external DepotDownloader agent that
// fetches a product's installation files.
package depotdownloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"modbase/internal/logging"
	"modbase/internal/services"
)

// GuardCodeEnv carries the one-time Steam Guard code to the agent.
const GuardCodeEnv = "STEAM_2FA_CODE"

// Executor abstracts command execution for testability. env entries are
// appended to the inherited environment.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, env []string) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithCredentials sets the account name and Steam Guard shared secret.
func WithCredentials(username, totpSecret string) Option {
	return func(c *Client) {
		c.username = strings.TrimSpace(username)
		c.totpSecret = strings.TrimSpace(totpSecret)
	}
}

// WithTimeout bounds a single download. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithClock overrides the time source used for guard codes.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "depotdownloader")
	}
}

// Client wraps DepotDownloader invocations.
type Client struct {
	binary     string
	username   string
	totpSecret string
	timeout    time.Duration
	exec       Executor
	now        func() time.Time
	logger     *slog.Logger
}

// New constructs a client for binary.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("depotdownloader binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{stdin: os.Stdin, stdout: os.Stderr, stderr: os.Stderr},
		now:    time.Now,
		logger: logging.NewComponentLogger(nil, "depotdownloader"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable name.
func (c *Client) Binary() string { return c.binary }

// Args builds the argument list for downloading appID into dir.
func (c *Client) Args(appID, dir string) []string {
	args := []string{"-no-mobile", "-app", appID, "-dir", dir}
	if c.username != "" {
		args = append(args, "-username", c.username)
	}
	return args
}

// Download fetches appID into dir, creating dir first. When a shared secret
// is configured a fresh guard code is generated immediately before the agent
// starts, since codes expire after 30 seconds.
func (c *Client) Download(ctx context.Context, appID, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("destination directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrPrecondition, "depotdownloader", "prepare", "create output directory", err)
	}

	var env []string
	if c.totpSecret != "" {
		code, err := GuardCode(c.totpSecret, c.now())
		if err != nil {
			return services.Wrap(services.ErrValidation, "depotdownloader", "guard code", "", err)
		}
		env = append(env, GuardCodeEnv+"="+code)
		c.logger.Info("using generated guard code for authentication")
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := c.Args(appID, dir)
	c.logger.Info("starting download",
		logging.String("binary", c.binary),
		logging.String("app_id", appID),
		logging.String("dir", dir),
	)
	started := time.Now()
	if err := c.exec.Run(runCtx, c.binary, args, env); err != nil {
		msg := "agent failed"
		if c.totpSecret != "" {
			msg = "agent failed; guard codes expire after 30 seconds, rerun if authentication was rejected"
		}
		return services.Wrap(services.ErrCollaborator, "depotdownloader", "download", msg, err)
	}
	c.logger.Info("download complete", logging.Duration("elapsed", time.Since(started)))
	return nil
}

// commandExecutor runs the agent attached to the terminal so it can prompt
// for credentials. The agent's stdout is routed to stderr to keep modbase's
// stdout for results.
type commandExecutor struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (e commandExecutor) Run(ctx context.Context, binary string, args []string, env []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", binary, err)
	}
	return nil
}
