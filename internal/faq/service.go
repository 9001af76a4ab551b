// Package faq answers chat messages for a business by matching them against
// its FAQ entries and asking a language model for the reply.
package faq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"supportbot/internal/llm"
	"supportbot/internal/logging"
	"supportbot/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultThreshold is the minimum similarity for an FAQ to ground a reply.
	DefaultThreshold = 0.80
	// DefaultTone is stored when onboarding omits a tone.
	DefaultTone = "friendly"

	embedConcurrency = 4

	matchedPrompt   = "You are a support assistant. Use this business FAQ to help answer questions:\n\nQ: %s\nA: %s"
	unmatchedPrompt = "You are a support assistant. The user asked something, but no relevant FAQ was found. Respond helpfully but briefly."
)

// ErrInvalid marks a request the caller must fix.
var ErrInvalid = errors.New("invalid request")

// Repository is the storage the service needs.
type Repository interface {
	Onboard(ctx context.Context, b store.Business, entries []store.FAQEntry) (int64, error)
	FAQs(ctx context.Context, businessID int64) ([]store.FAQEntry, error)
	Ping(ctx context.Context) error
}

// Item is one FAQ submitted at onboarding.
type Item struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// OnboardRequest registers a business.
type OnboardRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Tone  string `json:"tone"`
	FAQs  []Item `json:"faqs"`
}

// ChatRequest is one incoming message. A nil Threshold means the
// service's configured threshold.
type ChatRequest struct {
	Message    string   `json:"message"`
	BusinessID int64    `json:"business_id"`
	Threshold  *float64 `json:"similarity_threshold,omitempty"`
}

// ChatReply is the answer to one message. MatchedFAQ is the closest
// question even when it was not close enough to be used.
type ChatReply struct {
	Reply      string  `json:"reply"`
	MatchedFAQ *string `json:"matched_faq"`
	Score      float64 `json:"score"`
	UsedFAQ    bool    `json:"used_faq"`
}

// Service implements onboarding and answering.
type Service struct {
	repo      Repository
	embedder  llm.Embedder
	completer llm.Completer
	threshold float64
	logger    *zap.Logger
}

// NewService wires the service. threshold is used as given; callers pass
// DefaultThreshold when nothing is configured.
func NewService(repo Repository, embedder llm.Embedder, completer llm.Completer, threshold float64, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		embedder:  embedder,
		completer: completer,
		threshold: threshold,
		logger:    logging.For(logger, logging.CategoryFAQ),
	}
}

// Ready reports whether the store can serve requests.
func (s *Service) Ready(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	return nil
}

// Onboard stores the business and its FAQs. Answers are embedded
// concurrently; any embedding failure aborts the whole onboarding.
func (s *Service) Onboard(ctx context.Context, req OnboardRequest) (int64, error) {
	if strings.TrimSpace(req.Name) == "" {
		return 0, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.TrimSpace(req.Email) == "" {
		return 0, fmt.Errorf("%w: email is required", ErrInvalid)
	}
	for i, item := range req.FAQs {
		if item.Question == "" || item.Answer == "" {
			return 0, fmt.Errorf("%w: faqs[%d] needs a question and an answer", ErrInvalid, i)
		}
	}
	tone := req.Tone
	if tone == "" {
		tone = DefaultTone
	}

	entries := make([]store.FAQEntry, len(req.FAQs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, item := range req.FAQs {
		g.Go(func() error {
			vec, err := s.embedder.Embed(gctx, item.Answer)
			if err != nil {
				return fmt.Errorf("embedding faq %d: %w", i, err)
			}
			entries[i] = store.FAQEntry{Question: item.Question, Answer: item.Answer, Embedding: vec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	id, err := s.repo.Onboard(ctx, store.Business{Name: req.Name, Email: req.Email, Tone: tone}, entries)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Business onboarded", zap.Int64("business_id", id), zap.Int("faqs", len(entries)))
	return id, nil
}

// Answer replies to one message using the business's closest FAQ when it
// scores at or above the threshold.
func (s *Service) Answer(ctx context.Context, req ChatRequest) (ChatReply, error) {
	if req.Message == "" {
		return ChatReply{}, fmt.Errorf("%w: message is required", ErrInvalid)
	}
	threshold := s.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	query, err := s.embedder.Embed(ctx, req.Message)
	if err != nil {
		return ChatReply{}, err
	}

	faqs, err := s.repo.FAQs(ctx, req.BusinessID)
	if err != nil {
		return ChatReply{}, err
	}

	best, score := bestMatch(query, faqs)
	used := best != nil && score >= threshold

	var (
		system  string
		matched *string
	)
	if used {
		system = fmt.Sprintf(matchedPrompt, best.Question, best.Answer)
	} else {
		system = unmatchedPrompt
	}
	if best != nil {
		q := best.Question
		matched = &q
	}

	s.logger.Debug("FAQ match",
		zap.Int64("business_id", req.BusinessID),
		zap.Int("candidates", len(faqs)),
		zap.Float64("score", score),
		zap.Bool("used_faq", used))

	reply, err := s.completer.Complete(ctx, system, req.Message)
	if err != nil {
		return ChatReply{}, err
	}

	return ChatReply{Reply: reply, MatchedFAQ: matched, Score: score, UsedFAQ: used}, nil
}

// bestMatch returns the entry most similar to query and its score. Entries
// without an embedding or with a different dimension are skipped. With no
// candidates the score is -1.
func bestMatch(query []float32, faqs []store.FAQEntry) (*store.FAQEntry, float64) {
	var best *store.FAQEntry
	score := -1.0
	for i := range faqs {
		if faqs[i].Embedding == nil {
			continue
		}
		sim, err := llm.CosineSimilarity(query, faqs[i].Embedding)
		if err != nil {
			continue
		}
		if sim > score {
			score = sim
			best = &faqs[i]
		}
	}
	return best, score
}
