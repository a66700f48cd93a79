package cmd

import (
	"errors"
	"log"

	"github.com/tdnguyen/hiring-mcp/internal/match"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hiring-mcp"
)

type Config struct {
	Listen           string            `mapstructure:"listen"`
	TokenFile        string            `mapstructure:"token-file"`
	AccountTokenFile string            `mapstructure:"account-token-file"`
	SheetScriptURL   string            `mapstructure:"sheet-script-url"`
	UserAgent        string            `mapstructure:"user-agent"`
	Thresholds       *match.Thresholds `mapstructure:"thresholds"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hiring-mcp is an MCP server exposing Base hiring data as tools for AI assistants",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"token-file":         "BASE_TOKEN_FILE",
		"account-token-file": "BASE_ACCOUNT_TOKEN_FILE",
		"sheet-script-url":   "SHEET_SCRIPT_URL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hiring-mcp.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for serve command now. If there is no config, we can skip initialization
	if serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The server runs fine on flags and environment alone, but a config
	// file that exists and does not parse is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
