package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/repository"

	openai "github.com/sashabaranov/go-openai"
)

// FallbackPolicy selects the companion text used when the completion provider
// is unavailable or unconfigured. It is an explicit strategy parameter so the
// service stays deterministic and testable; implementations must not use
// randomness.
type FallbackPolicy func(article *models.Article) string

// FirstSentenceFallback is the default policy: the first sentence of the
// article body, or the title when the body is empty.
func FirstSentenceFallback(article *models.Article) string {
	content := strings.TrimSpace(article.Content)
	if content == "" {
		return article.Title
	}
	for i, r := range content {
		if r == '.' || r == '!' || r == '?' {
			return content[:i+1]
		}
	}
	return content
}

// DefaultCompletionTimeout bounds a single provider call. A hung provider must
// fail over to the fallback policy, not stall the request.
const DefaultCompletionTimeout = 10 * time.Second

// CompletionService wraps the opaque text-completion provider behind a single
// call contract: given an article, produce a short companion blurb.
type CompletionService interface {
	ArticleCompanion(articleID uint) (*models.CompanionResponse, error)
}

type completionService struct {
	articleRepo repository.ArticleRepository
	client      *openai.Client // Nil when no provider is configured
	model       string
	timeout     time.Duration
	fallback    FallbackPolicy
}

// NewCompletionService creates a new instance of CompletionService. An empty
// apiKey disables the provider entirely; every request then goes through the
// fallback policy. A non-positive timeout defaults to DefaultCompletionTimeout
// and a nil fallback defaults to FirstSentenceFallback.
func NewCompletionService(articleRepo repository.ArticleRepository, apiKey, baseURL, model string, timeout time.Duration, fallback FallbackPolicy) CompletionService {
	var client *openai.Client
	if apiKey == "" {
		log.Printf("WARN: [CompletionService] No API key configured; companion texts will use the fallback policy only.")
	} else {
		clientConfig := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			clientConfig.BaseURL = baseURL
		}
		client = openai.NewClientWithConfig(clientConfig)
	}
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	if fallback == nil {
		fallback = FirstSentenceFallback
	}
	return &completionService{
		articleRepo: articleRepo,
		client:      client,
		model:       model,
		timeout:     timeout,
		fallback:    fallback,
	}
}

// ArticleCompanion produces a short blurb for the article: one completion call
// against the provider, or the fallback policy's text when the provider is
// unconfigured or the call fails. Provider failures degrade, they never
// surface as errors to the reading flow.
func (s *completionService) ArticleCompanion(articleID uint) (*models.CompanionResponse, error) {
	article, err := s.articleRepo.GetArticleByID(articleID)
	if err != nil {
		return nil, fmt.Errorf("%w: article lookup failed: %v", ErrUnavailable, err)
	}
	if article == nil {
		return nil, fmt.Errorf("%w: article %d", ErrNotFound, articleID)
	}

	response := &models.CompanionResponse{
		ArticleID:   article.ID,
		GeneratedAt: time.Now().UTC(),
	}

	if s.client != nil {
		text, callErr := s.complete(article)
		if callErr == nil && strings.TrimSpace(text) != "" {
			response.Text = strings.TrimSpace(text)
			return response, nil
		}
		log.Printf("WARN: [CompletionService] Completion call failed for article ID %d, using fallback: %v", article.ID, callErr)
	}

	response.Text = s.fallback(article)
	response.Fallback = true
	return response, nil
}

func (s *completionService) complete(article *models.Article) (string, error) {
	prompt := fmt.Sprintf(
		"Write one short, friendly sentence inviting a reader to explore the encyclopedia article titled %q. Do not exceed 30 words.",
		article.Title,
	)
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response had no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
