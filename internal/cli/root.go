package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	jsonLog   bool
	apiKey    string
	serverURL string
	provider  string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "boxedctl",
	Short: "Multi-provider sandbox orchestration client",
	Long: `boxedctl talks to a running Boxed control plane: create and run
sandboxes across whichever providers (Docker, Modal, E2B, Daytona,
Blaxel, Cloudflare, Vercel) the server has configured, uniformly.

It also has a "serve" subcommand for running the control plane itself
during local development.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

		if !jsonLog {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}

		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Output logs in JSON format")
	RootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("BOXED_API_KEY"), "API Key for authentication")
	RootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("BOXED_SERVER_URL", "http://localhost:8080"), "Base URL of the Boxed control plane")
	RootCmd.PersistentFlags().StringVar(&provider, "provider", os.Getenv("BOXED_PROVIDER"), "Provider to target (docker, modal, e2b, daytona, blaxel, cloudflare, vercel)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
