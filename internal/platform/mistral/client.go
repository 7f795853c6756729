package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/JDerekLomas/sourcelibrary/internal/provider"
)

const (
	// Name is the registry key for this client.
	Name = "mistral"

	// DefaultBaseURL is the Mistral API root.
	DefaultBaseURL = "https://api.mistral.ai"

	// DefaultOCRModel and DefaultChatModel are used when no model names are
	// configured.
	DefaultOCRModel  = "mistral-ocr-latest"
	DefaultChatModel = "mistral-large-latest"
)

// Config carries everything needed to construct a Client.
type Config struct {
	// APIKey authenticates against the Mistral API. Required.
	APIKey string

	// OCRModel and ChatModel default to DefaultOCRModel / DefaultChatModel.
	OCRModel  string
	ChatModel string

	// BaseURL overrides the API root; used in tests.
	BaseURL string

	// MaxInFlight and RequestsPerSecond bound the client's limiters.
	MaxInFlight       int64
	RequestsPerSecond float64

	// Retry controls API-call retries. Zero value uses
	// provider.DefaultRetryPolicy.
	Retry provider.RetryPolicy
}

// Client talks to the Mistral REST API.
type Client struct {
	logger     *slog.Logger
	apiKey     string
	baseURL    string
	ocrModel   string
	chatModel  string
	gate       *provider.Gate
	retry      provider.RetryPolicy
	httpClient *http.Client
}

// New constructs a Client. A missing API key fails with ErrInvalidConfig so
// startup can degrade to "mistral unavailable" instead of crashing.
func New(logger *slog.Logger, cfg Config) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: mistral API key is empty", provider.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.OCRModel == "" {
		cfg.OCRModel = DefaultOCRModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = provider.DefaultRetryPolicy()
	}

	return &Client{
		logger:    logger.With(slog.String("component", "mistral_client")),
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		ocrModel:  cfg.OCRModel,
		chatModel: cfg.ChatModel,
		gate:      provider.NewGate(cfg.MaxInFlight, cfg.RequestsPerSecond),
		retry:     cfg.Retry,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}, nil
}

// Name implements provider.Client.
func (c *Client) Name() string { return Name }

// ocrRequest is the /v1/ocr request body.
type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrDocument struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
}

// ocrResponse is the /v1/ocr response body.
type ocrResponse struct {
	Pages []ocrPage `json:"pages"`
}

type ocrPage struct {
	Index    int        `json:"index"`
	Markdown string     `json:"markdown"`
	Images   []ocrImage `json:"images"`
}

type ocrImage struct {
	ID          string `json:"id"`
	ImageBase64 string `json:"image_base64"`
}

// ProcessOCR runs the page image through Mistral's OCR endpoint, uploads any
// embedded images through req.Assets and rewrites their markdown
// placeholders to the uploaded URLs. Pages are joined with blank lines.
func (c *Client) ProcessOCR(ctx context.Context, req provider.OCRRequest) (*provider.OCRResult, error) {
	body := ocrRequest{
		Model:              c.ocrModel,
		Document:           ocrDocument{Type: "image_url", ImageURL: req.ImageURL},
		IncludeImageBase64: true,
	}

	var resp ocrResponse
	if err := c.call(ctx, "ocr", "/v1/ocr", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Pages) == 0 {
		return &provider.OCRResult{}, nil
	}

	markdowns := make([]string, 0, len(resp.Pages))
	var allURLs []string
	for _, page := range resp.Pages {
		urls := c.uploadPageImages(ctx, req, page.Images)
		allURLs = append(allURLs, collectURLs(urls)...)
		markdowns = append(markdowns, rewritePlaceholders(page.Markdown, urls))
	}

	return &provider.OCRResult{
		Text:      strings.Join(markdowns, "\n\n"),
		ImageURLs: allURLs,
	}, nil
}

// uploadPageImages uploads every embedded image of one page concurrently and
// returns image id -> uploaded URL. Images that could not be uploaded (or a
// nil asset store) are absent from the map, leaving their placeholders
// unresolved in the rewritten markdown.
func (c *Client) uploadPageImages(ctx context.Context, req provider.OCRRequest, images []ocrImage) map[string]string {
	urls := make(map[string]string, len(images))
	if len(images) == 0 {
		return urls
	}
	if req.Assets == nil {
		c.logger.Warn("no asset store supplied; embedded OCR images left unresolved",
			"page_id", req.PageID,
			"images", len(images))
		return urls
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, img := range images {
		if img.ImageBase64 == "" {
			continue
		}
		wg.Add(1)
		go func(img ocrImage) {
			defer wg.Done()
			url, err := req.Assets.UploadImage(ctx, req.BookID, req.PageID, img.ImageBase64)
			if err != nil {
				c.logger.Warn("embedded image upload failed; placeholder left unresolved",
					"page_id", req.PageID,
					"image_id", img.ID,
					"error", err)
				return
			}
			mu.Lock()
			urls[img.ID] = url
			mu.Unlock()
		}(img)
	}
	wg.Wait()
	return urls
}

// chatRequest is the /v1/chat/completions request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the /v1/chat/completions response body.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ProcessTranslation submits a prompt to chat completions and returns the
// raw response text.
func (c *Client) ProcessTranslation(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model:    c.chatModel,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	var resp chatResponse
	if err := c.call(ctx, "translation", "/v1/chat/completions", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("mistral translation: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Shutdown releases pooled HTTP connections. Idempotent.
func (c *Client) Shutdown(ctx context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// call POSTs a JSON body under the client's limiters and retry policy and
// decodes the JSON response into out.
func (c *Client) call(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("mistral %s: marshal request: %w", op, err)
	}

	release, err := c.gate.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("mistral %s: %w", op, err)
	}
	defer release()

	return provider.Retry(ctx, c.logger, c.retry, Name, op, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("API status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

// rewritePlaceholders replaces each `![id](id)` placeholder whose image was
// uploaded with the uploaded URL.
func rewritePlaceholders(markdown string, urls map[string]string) string {
	for id, url := range urls {
		placeholder := fmt.Sprintf("![%s](%s)", id, id)
		replacement := fmt.Sprintf("![%s](%s)", id, url)
		markdown = strings.ReplaceAll(markdown, placeholder, replacement)
	}
	return markdown
}

func collectURLs(urls map[string]string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		out = append(out, u)
	}
	return out
}
