package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/catlink/internal/config"
	"git.home.luguber.info/inful/catlink/internal/daemon"
	"git.home.luguber.info/inful/catlink/internal/entitylink"
	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
	"git.home.luguber.info/inful/catlink/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"catlink.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" help:"Run the catlink daemon (API, admin, and scheduled reindex)"`

	Parse struct {
		Text string `arg:"" help:"Text containing exactly one entity link"`
	} `cmd:"" help:"Strictly parse one entity link and print its parts"`

	Extract struct {
		Text string `arg:"" optional:"" help:"Text to scan; reads stdin when omitted"`
	} `cmd:"" help:"Extract every well-formed entity link from text"`

	Render struct {
		EntityType      string `arg:"" help:"Entity type, e.g. table"`
		EntityFQN       string `arg:"" help:"Entity fully-qualified name"`
		FieldName       string `arg:"" optional:"" help:"Field name"`
		ArrayFieldName  string `arg:"" optional:"" help:"Array member name"`
		ArrayFieldValue string `arg:"" optional:"" help:"Array member value"`
	} `cmd:"" help:"Assemble and print a canonical entity link"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	adapter := cerrors.NewCLIErrorAdapter(CLI.Verbose, slog.Default())

	cmd := ctx.Command()
	switch {
	case cmd == "serve":
		if err := runServe(); err != nil {
			adapter.HandleError(err)
		}
	case strings.HasPrefix(cmd, "parse"):
		if err := runParse(CLI.Parse.Text); err != nil {
			adapter.HandleError(err)
		}
	case strings.HasPrefix(cmd, "extract"):
		if err := runExtract(CLI.Extract.Text); err != nil {
			adapter.HandleError(err)
		}
	case strings.HasPrefix(cmd, "render"):
		if err := runRender(); err != nil {
			adapter.HandleError(err)
		}
	case cmd == "version":
		fmt.Printf("catlink %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	}
}

func runServe() error {
	cfg, err := config.LoadOrDefault(CLI.Config)
	if err != nil {
		return err
	}
	applyLogConfig(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.NewWithConfigFile(cfg, CLI.Config)
	if err != nil {
		return cerrors.WrapError(err, cerrors.CategoryDaemon, "failed to create daemon").Build()
	}

	if err := d.Start(ctx); err != nil {
		return cerrors.WrapError(err, cerrors.CategoryDaemon, "failed to start daemon").Build()
	}

	slog.Info("Daemon running, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping daemon...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := d.Stop(stopCtx); err != nil {
		return cerrors.WrapError(err, cerrors.CategoryDaemon, "failed to stop daemon").Build()
	}
	return nil
}

func runParse(text string) error {
	link, err := entitylink.Parse(text)
	if err != nil {
		return cerrors.LinkParseError(text, err).Build()
	}

	fmt.Printf("link:        %s\n", link.String())
	fmt.Printf("type:        %s\n", link.Type())
	fmt.Printf("entity_type: %s\n", link.EntityType())
	fmt.Printf("entity_fqn:  %s\n", link.EntityFQN())
	if link.FieldName() != "" {
		fmt.Printf("field_name:  %s\n", link.FieldName())
	}
	if link.ArrayFieldName() != "" {
		fmt.Printf("array_field: %s\n", link.ArrayFieldName())
	}
	if link.ArrayFieldValue() != "" {
		fmt.Printf("array_value: %s\n", link.ArrayFieldValue())
	}
	fmt.Printf("field_type:  %s\n", link.FieldType())
	fmt.Printf("field_value: %s\n", link.FieldValue())
	return nil
}

func runExtract(text string) error {
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return cerrors.WrapError(err, cerrors.CategoryRuntime, "failed to read stdin").Build()
		}
		text = string(data)
	}

	links, err := entitylink.ExtractAll(text)
	if err != nil {
		return cerrors.LinkParseError(text, err).Build()
	}
	for _, l := range links {
		fmt.Printf("%s\t%s\t%s\n", l.String(), l.Type(), l.FieldValue())
	}
	slog.Debug("Extraction complete", "links", len(links))
	return nil
}

func runRender() error {
	link, err := entitylink.New(
		CLI.Render.EntityType,
		CLI.Render.EntityFQN,
		CLI.Render.FieldName,
		CLI.Render.ArrayFieldName,
		CLI.Render.ArrayFieldValue,
	)
	if err != nil {
		return cerrors.WrapError(err, cerrors.CategoryLink, "cannot assemble entity link").Build()
	}
	fmt.Println(link.String())
	return nil
}

// applyLogConfig reconfigures the default logger from the loaded config.
func applyLogConfig(cfg *config.Config) {
	level := slog.LevelInfo
	switch config.NormalizeLogLevel(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if CLI.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
