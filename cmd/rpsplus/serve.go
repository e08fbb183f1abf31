package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/rpsplus/internal/referee"
	"github.com/lox/rpsplus/internal/server"
)

// ServeCmd runs the HTTP and websocket referee
type ServeCmd struct {
	Config string `default:"rpsplus.hcl" help:"HCL config file (defaults apply if it does not exist)"`
	Addr   string `help:"Listen address as host:port, overrides the config file"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid --addr: %w", err)
		}
		cfg.Server.Address = host
		if cfg.Server.Port, err = strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid --addr port: %w", err)
		}
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var out io.Writer = os.Stderr
	if cfg.Server.LogFile != "" {
		f, err := openLogFile(cfg.Server.LogFile)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	logger, err := newLogger(out, cfg.Server.LogLevel, "info", "rpsplus")
	if err != nil {
		return err
	}

	svc := referee.NewService(nil, quartz.NewReal(), logger, cfg.Referee())
	s := server.NewServer(cfg.Addr(), svc, logger)

	logger.Info("Starting referee",
		"addr", cfg.Addr(),
		"max_active", cfg.Matches.MaxActive,
		"idle_timeout", time.Duration(cfg.Matches.IdleTimeoutSeconds)*time.Second,
		"sweep_interval", time.Duration(cfg.Matches.SweepIntervalSeconds)*time.Second)

	ctx := setupSignalHandler(logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
