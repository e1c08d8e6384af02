// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperdash CLI.
// Implements: prd006-cli; prd001-backend-client, prd002-papers,
//             prd003-extraction-stream, prd004-modules,
//             prd005-claim-snapshot (CLI surface).
// See docs/ARCHITECTURE § Command Surface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperdash/internal/api"
	"github.com/pdiddy/paperdash/internal/paper"
	"github.com/pdiddy/paperdash/internal/secrets"
	"github.com/pdiddy/paperdash/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, the secret value for key otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets[key]
}

// rootCmd is the base command for the paperdash CLI.
var rootCmd = &cobra.Command{
	Use:   "paperdash",
	Short: "Command-line dashboard for the paper-analysis backend",
	Long: `paperdash is a command-line dashboard for a research-paper analysis
backend. Upload papers, watch claim extraction stream in, trigger deferred
modules like the storybook generator, and keep a local queryable snapshot
of extracted claims.

Every command talks to the backend over its HTTP API; nothing is computed
locally. Configure the backend address in paperdash.yaml or through
PAPERDASH_* environment variables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		log.SetOutput(os.Stderr)
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debugf("Loaded secrets: %v", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperdash.yaml or ~/.config/paperdash/paperdash.yaml)")
	rootCmd.PersistentFlags().String("context", "", "execution context: internal or public (default from config)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperdash")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperdash"))
		}
	}

	viper.SetEnvPrefix("PAPERDASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("backend.internal_url", "http://backend:8000")
	viper.SetDefault("backend.public_url", "http://localhost:8000")
	viper.SetDefault("backend.context", string(types.ContextPublic))
	viper.SetDefault("backend.timeout", 30*time.Second)
	viper.SetDefault("backend.user_agent", "paperdash/0.1")
	viper.SetDefault("snapshot.dir", "snapshot")
	viper.SetDefault("snapshot.max_results", 50)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// backendConfig assembles the backend settings from config, environment,
// flags, and loaded secrets. The --context flag wins over config.
func backendConfig(cmd *cobra.Command) types.BackendConfig {
	execCtx, _ := cmd.Flags().GetString("context")
	if execCtx == "" {
		execCtx = viper.GetString("backend.context")
	}

	return types.BackendConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("backend.timeout"),
			UserAgent: viper.GetString("backend.user_agent"),
		},
		InternalURL: viper.GetString("backend.internal_url"),
		PublicURL:   viper.GetString("backend.public_url"),
		Context:     types.ExecutionContext(execCtx),
		Token:       secretDefault(secrets.BackendTokenKey, viper.GetString("backend.token")),
	}
}

func newClient(cmd *cobra.Command) (*api.Client, error) {
	return api.New(backendConfig(cmd))
}

func newPaperService(cmd *cobra.Command) (*paper.Service, error) {
	client, err := newClient(cmd)
	if err != nil {
		return nil, err
	}
	return paper.NewService(client), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
