package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/internal/app"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/adapter"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/agent"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/config"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/env"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/logging"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/mcp"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/rpc"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/system"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/version"
)

const remoteTimeout = 60 * time.Second

var cfgFile string

func main() {
	if err := env.LoadDefaults(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vshell",
		Short:        "Sandboxed virtual shell with plain English commands",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.vshell/config.yaml)")

	root.AddCommand(serveCmd())
	root.AddCommand(execCmd())
	root.AddCommand(translateCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(replCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(versionCmd())
	return root
}

func loadConfig() (*config.Config, logrus.FieldLogger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat), nil
}

// quietLogger keeps one-shot commands silent unless debugging.
func quietLogger(cfg *config.Config) logrus.FieldLogger {
	level := strings.ToLower(cfg.LogLevel)
	if level == "debug" || level == "trace" {
		return logging.New(cfg.LogLevel, cfg.LogFormat)
	}
	return logging.Discard()
}

func serveCmd() *cobra.Command {
	var httpAddr, grpcAddr, gatewayAddr string
	var maxSessions int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web terminal, gRPC and gateway front ends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if httpAddr != "" {
				cfg.Server.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("grpc-addr") {
				cfg.Server.GRPCAddr = grpcAddr
			}
			if gatewayAddr != "" {
				cfg.Gateway.Addr = gatewayAddr
			}
			if maxSessions > 0 {
				cfg.Gateway.MaxSessions = maxSessions
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vshell listening on %s\n", cfg.Server.HTTPAddr)
			return a.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address (empty disables gRPC)")
	cmd.Flags().StringVar(&gatewayAddr, "gateway-addr", "", "JSON-RPC gateway listen address")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "maximum concurrent gateway sessions")
	return cmd
}

func execCmd() *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "exec COMMAND...",
		Short: "Run a command batch once and print the output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := strings.Join(args, " ")
			if remote != "" {
				return execRemote(cmd, remote, line)
			}

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			d, err := app.NewDispatcher(cmd.Context(), cfg, quietLogger(cfg))
			if err != nil {
				return err
			}
			report, err := d.Execute(cmd.Context(), line)
			if err != nil {
				return fmt.Errorf("%s", dispatch.UserMessage(err))
			}
			if report.Interpreted != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "(%s) %s\n", report.Source, report.Interpreted)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "gRPC address of a running server")
	return cmd
}

func execRemote(cmd *cobra.Command, addr, line string) error {
	client, err := rpc.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()
	resp, err := client.Exec(ctx, line)
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("%s", resp.Error)
	}
	if resp.Interpreted != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "(%s) %s\n", resp.Source, resp.Interpreted)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Out)
	return nil
}

func translateCmd() *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "translate TEXT...",
		Short: "Show the command a plain English request maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if remote != "" {
				client, err := rpc.Dial(remote)
				if err != nil {
					return err
				}
				defer client.Close()
				ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
				defer cancel()
				resp, err := client.Translate(ctx, text)
				if err != nil {
					return err
				}
				if resp.Error != "" {
					return fmt.Errorf("%s", resp.Error)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", resp.Interpreted, resp.Source)
				return nil
			}

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			d, err := app.NewDispatcher(cmd.Context(), cfg, quietLogger(cfg))
			if err != nil {
				return err
			}
			in, ok := d.Interpreter().Interpret(cmd.Context(), text)
			if !ok {
				return fmt.Errorf("could not interpret %q", text)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", in.Command, in.Source)
			return nil
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "gRPC address of a running server")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve JSON-RPC tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := app.NewDispatcher(ctx, cfg, logger)
			if err != nil {
				return err
			}
			srv := mcp.NewServer(d)
			srv.SetLogger(logger.WithField("component", "mcp"))
			return srv.ServeStdio(ctx)
		},
	}
}

func replCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive prompt against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a := adapter.NewCLIAdapter(addr)
			a.SetIO(cmd.InOrStdin(), cmd.OutOrStdout())
			return a.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:5000", "server address")
	return cmd
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Show host, workspace and fallback status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			profile, _ := system.DetectContext(cmd.Context())
			d, err := app.NewDispatcher(cmd.Context(), cfg, logging.Discard())
			if err != nil {
				return err
			}
			ws := d.Workspace()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "OS: %s\nDistro: %s %s\nKernel: %s\nArch: %s\nShell: %s\n",
				profile.OS, profile.Distro, profile.Version, profile.Kernel, profile.Arch, profile.Shell)
			fmt.Fprintf(out, "Workspace: %s\n", ws.Root())
			fmt.Fprintf(out, "Forbidden: %s\n", strings.Join(ws.ForbiddenRoots(), ", "))
			fmt.Fprintf(out, "Commands: %s\n", strings.Join(d.Verbs(), " "))
			fmt.Fprintf(out, "Fallback: %s\n", fallbackStatus(cfg))
			fmt.Fprintf(out, "HTTP: %s\ngRPC: %s\n", cfg.Server.HTTPAddr, cfg.Server.GRPCAddr)
			if cfg.Gateway.Addr != "" {
				fmt.Fprintf(out, "Gateway: %s\n", cfg.Gateway.Addr)
			}
			return nil
		},
	}
}

func fallbackStatus(cfg *config.Config) string {
	opts := cfg.FallbackOptions()
	switch strings.ToLower(opts.Provider) {
	case agent.ProviderNone, "off":
		return "disabled"
	case agent.ProviderOllama:
		return agent.ProviderOllama
	case "", "hf":
		opts.Provider = agent.ProviderHuggingFace
	}
	if opts.Token == "" {
		return opts.Provider + " (no token, rules only)"
	}
	return opts.Provider
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
