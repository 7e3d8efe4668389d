package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/soundfetch/tunebot/app"
	"github.com/soundfetch/tunebot/core/buildinfo"
	corecmd "github.com/soundfetch/tunebot/core/cmd"
)

const defaultConfigPath = "config.yaml"

func main() {
	// A missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "tunebot",
		Short:         "Telegram bot for music search and download",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), healthcheckCmd())
	root.RunE = runCmd().RunE // bare invocation runs the bot

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return corecmd.Run(corecmd.Options{
				ConfigEnvVar:      "CONFIG_PATH",
				DefaultConfigPath: defaultConfigPath,
				LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
					return app.Load(path)
				},
				Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
					a := cfg.(*app.App)
					if err := a.Bootstrap(); err != nil {
						return nil, err
					}
					return a, nil
				},
			})
		},
	}
}

func healthcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the music catalog service and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := os.Getenv("CONFIG_PATH")
			if path == "" {
				path = defaultConfigPath
			}
			a, err := app.Load(path)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := a.HealthCheck(ctx); err != nil {
				return fmt.Errorf("catalog unavailable: %w", err)
			}
			fmt.Println("catalog is up")
			return nil
		},
	}
}
