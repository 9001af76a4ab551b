package main

import (
	"fmt"

	"supportbot/internal/faq"
	"supportbot/internal/llm"
	"supportbot/internal/server"
	"supportbot/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

// serveCmd runs the FAQ backend.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the SupportBot API (/chat, /onboard)",
	Long: `Starts the HTTP API the chat widget talks to.

Messages are matched against the business's FAQ answers by embedding
similarity; the closest FAQ above server.similarity_threshold grounds the
model's reply. Requires GEMINI_API_KEY (or llm.api_key).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	db, err := store.OpenFAQStore(ctx, cfg.Server.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to open FAQ store: %w", err)
	}
	defer db.Close()

	model, err := llm.NewGenAI(ctx, llm.GenAIOptions{
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Timeout:        cfg.GetLLMTimeout(),
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	logger.Info("Model client ready", zap.String("models", model.Name()))

	svc := faq.NewService(db, model, model, cfg.Server.SimilarityThreshold, logger)
	srv := server.New(svc, server.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxConnections:  cfg.Server.MaxConnections,
		RequestTimeout:  cfg.GetRequestTimeout(),
		ShutdownTimeout: cfg.GetShutdownTimeout(),
		Logger:          logger,
	})
	return srv.ListenAndServe(ctx, cfg.Addr())
}
