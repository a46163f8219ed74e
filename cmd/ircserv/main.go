package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/ircserv/internal/app"
	"github.com/vovakirdan/ircserv/internal/config"
	"github.com/vovakirdan/ircserv/internal/log"
)

var configPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ircserv <port> <password> [motd]",
		Short: "ircserv is a single-process IRC server",
		Long: `ircserv is a single-process IRC server with channels, operators
and an embedded dice-roller bot. Clients connect over plain TCP and must
supply the server password during registration.`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServer,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.AddCommand(selftestCmd())
	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	port, err := parsePort(args[0])
	if err != nil {
		return err
	}
	password := args[1]
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	bootLogger := log.New("info")
	cfg, cfgPath, err := config.Load(bootLogger, configPath)
	if err != nil {
		return err
	}

	// positional arguments override the config file
	cfg.Port = port
	cfg.Password = password
	if len(args) == 3 {
		cfg.MOTD = args[2]
	}

	logger := log.New(cfg.LogLevel)
	logger.Debug().Str("config", cfgPath).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.New(cfg, logger).Run(ctx)
}

func parsePort(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid port %q", s)
		}
	}
	port, err := strconv.Atoi(s)
	if err != nil || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
