package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fran-as/millDischargeDashboard/internal/app"
	"github.com/fran-as/millDischargeDashboard/internal/config"
	"github.com/fran-as/millDischargeDashboard/internal/errors"
	"github.com/fran-as/millDischargeDashboard/pkg/contracts"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Mill discharge pump dashboard server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := contracts.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", config.AppName, info.Version, info.Stage)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", info.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", info.OS, info.Architecture)
			fmt.Fprintf(cmd.OutOrStdout(), "API: %s, data format: %s\n", info.APIVersion, info.DataFormat)
		},
	})

	var configFile string
	var port int
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API, websocket sessions and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return errors.NewConfigError("failed to load configuration", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			a, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}
			return a.Run()
		},
	}
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file (defaults to config.yaml lookup)")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port, overriding the config")
	root.AddCommand(serveCmd)

	return root
}

func loadConfig(file string) (*config.Config, error) {
	if file == "" {
		return config.Load()
	}
	return config.LoadFrom(file)
}
