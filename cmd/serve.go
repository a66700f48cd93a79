package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tdnguyen/hiring-mcp/internal/basehiring"
	"github.com/tdnguyen/hiring-mcp/internal/cache"
	"github.com/tdnguyen/hiring-mcp/internal/document"
	"github.com/tdnguyen/hiring-mcp/internal/logger"
	"github.com/tdnguyen/hiring-mcp/internal/match"
	"github.com/tdnguyen/hiring-mcp/internal/resolver"
	"github.com/tdnguyen/hiring-mcp/internal/secrets"
	"github.com/tdnguyen/hiring-mcp/internal/sheets"
	"github.com/tdnguyen/hiring-mcp/internal/tools"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultListen = ":8000"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hiring MCP server",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", defaultListen, "address for the streamable HTTP transport")
	serveCmd.Flags().Bool("stdio", false, "serve over stdio instead of HTTP")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

// serve is the main command for the server.
func serve(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		config = &Config{}
	}

	logger.Info("starting the hiring-mcp", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	token, err := resolveToken(config)
	if err != nil {
		logger.Fatal(
			"loading hiring api token",
			zap.Error(err),
			zap.String("hint", "set BASE_TOKEN_FILE environment variable or the 'token-file' key in the configuration file"),
		)
	}

	client := basehiring.New(ctx, logger, token)

	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	if accountToken := resolveAccountToken(config, logger); accountToken != "" {
		client.SetAccountToken(accountToken)
	}

	thresholds := match.DefaultThresholds()
	if config.Thresholds != nil {
		thresholds = *config.Thresholds
	}

	store := cache.New()

	srv := tools.New(&tools.Deps{
		Hiring: client,
		Sheet:  sheets.New(sheetScriptURL(config), logger, thresholds),
		Resolver: resolver.New(&resolver.Deps{
			Directory: client,
			Cache:     store,
			Logger:    logger,
		}, thresholds),
		Cache:     store,
		Extractor: document.NewExtractor(),
		Logger:    logger,
	})

	if stdio, _ := cmd.Flags().GetBool("stdio"); stdio {
		if err := srv.ServeStdio(); err != nil {
			logger.Fatal("stdio transport failed", zap.Error(err))
		}
		return
	}

	if err := srv.ServeHTTP(viper.GetString("listen")); err != nil {
		logger.Fatal("http transport failed", zap.Error(err))
	}
}

func resolveToken(config *Config) (string, error) {
	tokenFile := strings.TrimSpace(config.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("token-file"))
	}

	if tokenFile == "" {
		return "", fmt.Errorf("hiring api token file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "hiring api token",
		File: tokenFile,
	})
}

// resolveAccountToken loads the optional account directory token. Without it
// reviews are attributed by username only, so failure is not fatal.
func resolveAccountToken(config *Config, logger *zap.Logger) string {
	tokenFile := strings.TrimSpace(config.AccountTokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("account-token-file"))
	}
	if tokenFile == "" {
		return ""
	}

	token, err := secrets.Load(secrets.Source{
		Name: "account api token",
		File: tokenFile,
	})
	if err != nil {
		logger.Warn("skipping account directory, reviews keep usernames", zap.Error(err))
		return ""
	}

	return token
}

func sheetScriptURL(config *Config) string {
	if config.SheetScriptURL != "" {
		return config.SheetScriptURL
	}
	return viper.GetString("sheet-script-url")
}
