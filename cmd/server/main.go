package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/lox/pokerforbots/internal/game"
	"github.com/lox/pokerforbots/internal/server"
	"golang.org/x/sync/errgroup"
)

type CLI struct {
	Config string `kong:"default='pokerforbots.hcl',help='Path to the HCL server configuration file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pokerforbots-server"),
		kong.Description("Multiplayer poker table server"),
		kong.UsageOnError(),
	)

	level := log.InfoLevel
	if cli.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	cfg, err := server.LoadServerConfig(cli.Config)
	if err != nil {
		kctx.FatalIfErrorf(err)
	}
	if err := cfg.Validate(); err != nil {
		kctx.FatalIfErrorf(err)
	}

	if logFile, err := openLogFile(cfg.Server.LogFile); err == nil && logFile != nil {
		defer logFile.Close()
		logger.SetOutput(logFile)
	} else if err != nil {
		logger.Warn("failed to open log file, logging to stderr", "file", cfg.Server.LogFile, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewRouter(logger)
	g, gctx := errgroup.WithContext(ctx)

	var autoStart []*game.Driver
	for _, tableCfg := range cfg.Tables {
		table, driver := server.NewTableDriver(tableCfg, logger)
		router.RegisterTable(tableCfg.Name, table, driver)
		if tableCfg.AutoStart {
			autoStart = append(autoStart, driver)
		}
		g.Go(func() error {
			if err := driver.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	srv := server.NewServer(cfg.GetServerAddress(), router, logger)

	g.Go(func() error {
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	for _, driver := range autoStart {
		ctrl := game.ControlStartGame
		driver.Inbound() <- game.Inbound{Control: &ctrl}
	}

	logger.Info("server starting", "addr", cfg.GetServerAddress(), "tables", len(cfg.Tables))
	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server shutdown complete")
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
