package llm

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	PlaceholderResults = "$search_results$"
	PlaceholderQuery   = "$query$"
)

type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	VectorStoreID string
}

// Client serves both Generator and Retriever over the OpenAI API.
type Client struct {
	api           openai.Client
	model         openai.ChatModel
	vectorStoreID string
}

var (
	_ Generator = (*Client)(nil)
	_ Retriever = (*Client)(nil)
)

// NewClient builds the client once at startup. Retries are disabled: a failed
// call degrades to a fallback instead of being repeated.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:           openai.NewClient(opts...),
		model:         openai.ChatModel(cfg.Model),
		vectorStoreID: cfg.VectorStoreID,
	}
}

func (c *Client) Invoke(ctx context.Context, system, user string, p Params) string {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}

	out, err := c.complete(ctx, msgs, p)
	if err != nil {
		log.Error("Generation failed", "err", err)
		return FallbackReply
	}
	return out
}

func (c *Client) RetrieveAndGenerate(ctx context.Context, query, template string, cfg RetrievalConfig) (string, error) {
	if c.vectorStoreID == "" {
		return "", errors.New("no vector store configured")
	}
	if cfg.SearchType != "" && cfg.SearchType != SearchSemantic {
		return "", fmt.Errorf("unsupported search type %q", cfg.SearchType)
	}

	passages, err := c.search(ctx, query, cfg)
	if err != nil {
		return "", err
	}

	log.Debug("Retrieved passages", "count", len(passages), "query", query)

	prompt := strings.NewReplacer(
		PlaceholderResults, formatPassages(passages),
		PlaceholderQuery, query,
	).Replace(template)

	return c.complete(ctx, []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)}, cfg.Generation)
}

type passage struct {
	source string
	text   string
}

func (c *Client) search(ctx context.Context, query string, cfg RetrievalConfig) ([]passage, error) {
	params := openai.VectorStoreSearchParams{
		Query:        openai.VectorStoreSearchParamsQueryUnion{OfString: openai.String(query)},
		RewriteQuery: openai.Bool(false),
	}
	if cfg.Results > 0 {
		params.MaxNumResults = openai.Int(int64(cfg.Results))
	}
	if cfg.ScoreThreshold > 0 {
		params.RankingOptions = openai.VectorStoreSearchParamsRankingOptions{
			ScoreThreshold: openai.Float(cfg.ScoreThreshold),
		}
	}

	page, err := c.api.VectorStores.Search(ctx, c.vectorStoreID, params)
	if err != nil {
		return nil, fmt.Errorf("vector store search: %w", err)
	}

	var out []passage
	for _, r := range page.Data {
		var sb strings.Builder
		for _, part := range r.Content {
			if part.Text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(part.Text)
		}
		if sb.Len() == 0 {
			continue
		}
		out = append(out, passage{source: r.Filename, text: sb.String()})
	}
	return out, nil
}

func formatPassages(ps []passage) string {
	if len(ps) == 0 {
		return "(no matching information)"
	}

	var sb strings.Builder
	for i, p := range ps {
		if p.source != "" {
			fmt.Fprintf(&sb, "[%d] (%s) %s\n", i+1, p.source, p.text)
		} else {
			fmt.Fprintf(&sb, "[%d] %s\n", i+1, p.text)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *Client) complete(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion, p Params) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    msgs,
		Model:       c.model,
		Temperature: openai.Float(p.Temperature),
	}
	if p.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(p.MaxTokens))
	}
	if p.TopP > 0 {
		params.TopP = openai.Float(p.TopP)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
