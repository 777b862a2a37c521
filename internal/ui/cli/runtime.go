package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"typeinspector/internal/core/app"
	"typeinspector/internal/core/config"
	"typeinspector/internal/core/errors"
	"typeinspector/internal/shared/observability"
	"typeinspector/internal/shared/util"
)

// runtimeEnv is a running app plus the ambient services started for it.
type runtimeEnv struct {
	app           *app.App
	stopTracing   func(context.Context) error
	observability *ObservabilityServer
}

func startRuntime(ctx context.Context, opts *rootOptions, withServer bool) (*runtimeEnv, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "detect working directory")
	}
	cfg, cfgPath, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		return nil, err
	}
	slog.Debug("config loaded", "path", cfgPath)

	stopTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "initialize tracing")
	}

	a, err := app.New(cfg)
	if err != nil {
		_ = stopTracing(ctx)
		return nil, err
	}

	rt := &runtimeEnv{app: a, stopTracing: stopTracing}
	if withServer && cfg.Observability.MetricsAddr != "" {
		rt.observability = NewObservabilityServer(cfg.Observability.MetricsAddr, app.NewHealthService(a))
		if err := rt.observability.Start(ctx); err != nil {
			rt.close(ctx)
			return nil, err
		}
	}
	return rt, nil
}

func (rt *runtimeEnv) close(ctx context.Context) {
	if rt.observability != nil {
		if err := rt.observability.Stop(ctx); err != nil {
			slog.Warn("failed to stop observability server", "error", err)
		}
	}
	rt.app.Close()
	if err := rt.stopTracing(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
}

// loadConfig loads an explicit path, or the first discovered default. With
// no config file anywhere the built-in defaults apply.
func loadConfig(path, cwd string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", errors.AddContext(err, errors.CtxPath, path)
		}
		return cfg, path, nil
	}

	candidates, err := config.DiscoverPaths(cwd)
	if err != nil {
		return nil, "", err
	}
	for _, candidate := range candidates {
		cfg, loadErr := config.Load(candidate)
		if loadErr == nil {
			return cfg, candidate, nil
		}
		if os.IsNotExist(loadErr) {
			continue
		}
		return nil, "", errors.AddContext(loadErr, errors.CtxPath, candidate)
	}
	return config.DefaultConfig(), "", nil
}

// position is either a character offset or a 1-based line:column pair.
type position struct {
	offset   int
	lineCol  util.Position
	isOffset bool
}

func parsePosition(raw string) (position, error) {
	raw = strings.TrimSpace(raw)
	if line, col, ok := strings.Cut(raw, ":"); ok {
		l, lerr := strconv.Atoi(line)
		c, cerr := strconv.Atoi(col)
		if lerr != nil || cerr != nil || l < 1 || c < 1 {
			return position{}, errors.New(errors.CodeValidationError, fmt.Sprintf("invalid position %q, expected <line>:<column> starting at 1", raw))
		}
		return position{lineCol: util.Position{Line: l, Column: c}}, nil
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return position{}, errors.New(errors.CodeValidationError, fmt.Sprintf("invalid position %q, expected a character offset or <line>:<column>", raw))
	}
	return position{offset: offset, isOffset: true}, nil
}

func configureLogging(stderr io.Writer, uiMode, verbose bool) func() {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := stderr
	closeFn := func() {}
	if uiMode {
		logLevel = slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "typeinspector", "typeinspector.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "typeinspector", "typeinspector.log")
	}

	return "typeinspector.log"
}
