// Package commands implements the ectl CLI command tree.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-amule/amulec/cmd/ectl/cmdutil"
	"github.com/go-amule/amulec/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ectl",
	Short: "ectl is a command-line client for aMule's External Connections protocol",
	Long: `ectl drives a running aMule daemon over its External Connections (EC)
protocol: check server status, run searches, and manage the download queue.

Use "ectl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		bindFlags(v, cmd)

		cfg, err := config.Load(v, configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		cmdutil.Flags.Host = cfg.Host
		cmdutil.Flags.Port = cfg.Port
		cmdutil.Flags.Password = cfg.Password
		cmdutil.Flags.ClientName = cfg.ClientName
		cmdutil.Flags.ClientVersion = cfg.ClientVersion
		cmdutil.Flags.Output = cfg.Output
		cmdutil.Flags.NoColor = cfg.NoColor
		return nil
	},
}

// bindFlags binds every persistent flag on cmd to v under the matching
// config key, so an explicit flag takes precedence over env var, config
// file, and default (viper.BindPFlag makes an explicitly-set flag win
// unconditionally over everything else already layered into v).
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	_ = v.BindPFlag("host", cmd.Flags().Lookup("host"))
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("password", cmd.Flags().Lookup("password"))
	_ = v.BindPFlag("client_name", cmd.Flags().Lookup("client-name"))
	_ = v.BindPFlag("client_version", cmd.Flags().Lookup("client-version"))
	_ = v.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = v.BindPFlag("no_color", cmd.Flags().Lookup("no-color"))
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("host", "", "aMule daemon host")
	rootCmd.PersistentFlags().Int("port", 0, "aMule daemon EC port")
	rootCmd.PersistentFlags().String("password", "", "EC password")
	rootCmd.PersistentFlags().String("client-name", "", "client name sent during the handshake")
	rootCmd.PersistentFlags().String("client-version", "", "client version sent during the handshake")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: $XDG_CONFIG_HOME/amulec/config.yaml)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(partfileCmd)
	rootCmd.AddCommand(versionCmd)
}
