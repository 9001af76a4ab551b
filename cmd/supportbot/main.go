package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"supportbot/cmd/supportbot/chat"
	"supportbot/cmd/supportbot/ui"
	"supportbot/internal/chatclient"
	"supportbot/internal/config"
	"supportbot/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	endpoint   string
	businessID int

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "supportbot",
	Short: "SupportBot - customer support chat widget and FAQ backend",
	Long: `SupportBot answers customer questions from a business's FAQ.

Run without arguments to open the chat widget in your terminal. The widget
sends each message to the chat endpoint and shows the reply.

Configuration is read from ~/.supportbot/config.yaml (see "supportbot config"),
then .env and SUPPORTBOT_* environment variables, then flags.`,
	SilenceUsage:      true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentPreRunE = setup

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.supportbot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Chat endpoint URL (overrides client.endpoint)")
	rootCmd.PersistentFlags().IntVar(&businessID, "business-id", 0, "Business identifier sent with every message")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	loaded, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	// The widget owns the terminal, so it logs to a file.
	interactive := cmd == rootCmd
	logger, err = logging.New(cfg.Logging, logging.Options{Interactive: interactive, Verbose: verbose})
	if err != nil {
		return err
	}
	return nil
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		c.Client.Endpoint = endpoint
	}
	if flags.Changed("business-id") {
		c.Client.BusinessID = businessID
	}
}

func newClient() *chatclient.Client {
	return chatclient.New(chatclient.Options{
		Endpoint:   cfg.Client.Endpoint,
		BusinessID: cfg.Client.BusinessID,
		HTTPClient: &http.Client{},
		Logger:     logger,
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runInteractive(cmd *cobra.Command, args []string) error {
	logger.Info("Starting chat widget",
		zap.String("endpoint", cfg.Client.Endpoint),
		zap.Int("business_id", cfg.Client.BusinessID))

	return chat.Run(commandContext(cmd), chat.Options{
		Client:      newClient(),
		Styles:      ui.NewStyles(ui.ThemeByName(cfg.UI.Theme)),
		StartHidden: cfg.UI.StartHidden,
		Timeout:     cfg.GetClientTimeout(),
		Logger:      logger,
		Endpoint:    cfg.Client.Endpoint,
		BusinessID:  cfg.Client.BusinessID,
	})
}
