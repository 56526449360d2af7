package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/internal/app"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/config"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/env"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/logging"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/version"
)

var (
	cfgFile     string
	addr        string
	grpcAddr    string
	gatewayAddr string
	maxSessions int
	showVersion bool
)

func main() {
	pflag.StringVar(&cfgFile, "config", "", "config file (default: ~/.vshell/config.yaml)")
	pflag.StringVar(&addr, "addr", "", "HTTP listen address")
	pflag.StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address")
	pflag.StringVar(&gatewayAddr, "gateway-addr", "", "JSON-RPC gateway listen address")
	pflag.IntVar(&maxSessions, "max-sessions", 0, "maximum concurrent gateway sessions (0 = config value)")
	pflag.BoolVar(&showVersion, "version", false, "print version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Println(version.String())
		return
	}

	if err := env.LoadDefaults(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyFlags(cfg)

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("startup_failed")
		os.Exit(1)
	}

	logger.WithField("version", version.Version).Info("vshelld_started")
	if err := a.Run(ctx); err != nil {
		logger.WithError(err).Error("server_failed")
		os.Exit(1)
	}
	logger.Info("vshelld_stopped")
}

func applyFlags(cfg *config.Config) {
	if addr != "" {
		cfg.Server.HTTPAddr = addr
	}
	if pflag.CommandLine.Changed("grpc-addr") {
		cfg.Server.GRPCAddr = grpcAddr
	}
	if gatewayAddr != "" {
		cfg.Gateway.Addr = gatewayAddr
	}
	if maxSessions > 0 {
		cfg.Gateway.MaxSessions = maxSessions
	}
}
