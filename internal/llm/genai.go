package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"supportbot/internal/logging"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenAIOptions configures a GenAI client.
type GenAIOptions struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	// Timeout bounds each call. Zero means the caller's context decides.
	Timeout time.Duration
	Logger  *zap.Logger
}

// GenAI embeds and completes with Google's Gemini API.
type GenAI struct {
	client         *genai.Client
	model          string
	embeddingModel string
	timeout        time.Duration
	logger         *zap.Logger
}

// NewGenAI creates a Gemini-backed Embedder and Completer.
func NewGenAI(ctx context.Context, opts GenAIOptions) (*GenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.EmbeddingModel == "" {
		opts.EmbeddingModel = "gemini-embedding-001"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAI{
		client:         client,
		model:          opts.Model,
		embeddingModel: opts.EmbeddingModel,
		timeout:        opts.Timeout,
		logger:         logging.For(opts.Logger, logging.CategoryLLM),
	}, nil
}

// Embed returns the semantic-similarity embedding of text.
func (g *GenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := g.client.Models.EmbedContent(ctx,
		g.embeddingModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"},
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI embed failed: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	g.logger.Debug("Embedded text",
		zap.String("model", g.embeddingModel),
		zap.Int("dims", len(result.Embeddings[0].Values)),
		zap.Duration("took", time.Since(start)))
	return result.Embeddings[0].Values, nil
}

// Complete asks the chat model to answer user under the system instruction.
func (g *GenAI) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(user),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI completion failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	g.logger.Debug("Completion received",
		zap.String("model", g.model),
		zap.Int("length", len(text)),
		zap.Duration("took", time.Since(start)))
	return text, nil
}

// Name identifies the models in use.
func (g *GenAI) Name() string {
	return fmt.Sprintf("genai:%s+%s", g.model, g.embeddingModel)
}

func (g *GenAI) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}
