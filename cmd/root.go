package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	apiURL   string
	token    string
	timeout  time.Duration
	pageSize int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "veritas-console",
	Short: "Terminal client for the VeritasAI legal analysis service",
	Long: `Veritas Console is a terminal client for the VeritasAI multi-agent legal
analysis service. It submits free-text legal queries or PDF uploads and lets
you inspect the returned case law, citation verification verdicts, and
commentary.

Features:
- Interactive console with filtering, sorting, and paging of case results
- Citation verification panel with structured verdicts
- Query history with stored-result replay (no duplicate agent runs)
- One-shot query, PDF analysis, and folder-watch commands`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.veritas-console.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8000", "VeritasAI API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for the authenticated session")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 120*time.Second, "Request timeout (agent runs are slow)")
	rootCmd.PersistentFlags().IntVar(&pageSize, "page-size", 10, "Cases per page in the console")

	// Bind flags to viper
	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("api.token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("api.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("view.page_size", rootCmd.PersistentFlags().Lookup("page-size"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".veritas-console" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".veritas-console")
	}

	viper.SetEnvPrefix("VERITAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match, e.g. VERITAS_API_TOKEN

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Set defaults
	viper.SetDefault("api.url", "http://localhost:8000")
	viper.SetDefault("api.timeout", 120*time.Second)
	viper.SetDefault("api.rate_limit_rps", 5)
	viper.SetDefault("view.page_size", 10)
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		API: APIConfig{
			URL:          viper.GetString("api.url"),
			Token:        viper.GetString("api.token"),
			Timeout:      viper.GetDuration("api.timeout"),
			RateLimitRPS: viper.GetInt("api.rate_limit_rps"),
		},
		View: ViewConfig{
			PageSize: viper.GetInt("view.page_size"),
		},
	}
}

// Config represents the application configuration
type Config struct {
	API  APIConfig  `mapstructure:"api"`
	View ViewConfig `mapstructure:"view"`
}

type APIConfig struct {
	URL          string        `mapstructure:"url"`
	Token        string        `mapstructure:"token"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimitRPS int           `mapstructure:"rate_limit_rps"`
}

type ViewConfig struct {
	PageSize int `mapstructure:"page_size"`
}
