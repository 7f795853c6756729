package gemini

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/JDerekLomas/sourcelibrary/internal/provider"
)

const (
	// Name is the registry key for this client.
	Name = "gemini"

	// DefaultModel is used when no model name is configured.
	DefaultModel = "gemini-2.5-flash"

	downloadAttempts = 3
	fallbackMIMEType = "image/jpeg"
)

// Config carries everything needed to construct a Client.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the Gemini model name. Defaults to DefaultModel.
	Model string

	// MaxInFlight and RequestsPerSecond bound the client's limiters.
	// Non-positive values fall back to the provider defaults.
	MaxInFlight       int64
	RequestsPerSecond float64

	// Retry controls generation-call retries. Zero value uses
	// provider.DefaultRetryPolicy.
	Retry provider.RetryPolicy
}

// Client talks to the Gemini API for OCR, translation and chat sessions.
// One Client is shared process-wide; its limiters are the backpressure for
// every caller.
type Client struct {
	logger *slog.Logger
	genai  *genai.Client
	model  string
	gate   *provider.Gate
	retry  provider.RetryPolicy

	// httpClient is used for image downloads and media-type probes. Pooled
	// connections are released on Shutdown.
	httpClient *http.Client

	// downloadRetry is separate from the generation retry policy; image
	// downloads always back off exponentially.
	downloadRetry provider.RetryPolicy
}

// New constructs a Client. A missing API key fails with ErrInvalidConfig so
// startup can degrade to "gemini unavailable" instead of crashing.
func New(ctx context.Context, logger *slog.Logger, cfg Config) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is empty", provider.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = provider.DefaultRetryPolicy()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", provider.ErrInvalidConfig, err)
	}

	return &Client{
		logger: logger.With(slog.String("component", "gemini_client")),
		genai:  client,
		model:  cfg.Model,
		gate:   provider.NewGate(cfg.MaxInFlight, cfg.RequestsPerSecond),
		retry:  cfg.Retry,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   20,
				IdleConnTimeout:       30 * time.Second,
				ResponseHeaderTimeout: 60 * time.Second,
			},
		},
		downloadRetry: provider.RetryPolicy{MaxAttempts: downloadAttempts, BaseDelay: time.Second},
	}, nil
}

// Name implements provider.Client.
func (c *Client) Name() string { return Name }

// ProcessOCR downloads the page image, hands it to Gemini through the Files
// API and returns the extracted text. Gemini produces no embedded image
// assets, so the result's ImageURLs is always empty. The uploaded file is
// deleted after generation regardless of outcome.
func (c *Client) ProcessOCR(ctx context.Context, req provider.OCRRequest) (*provider.OCRResult, error) {
	imageData, err := c.downloadImage(ctx, req.ImageURL)
	if err != nil {
		return nil, err
	}
	mimeType := c.probeMIMEType(ctx, req.ImageURL)

	file, err := c.genai.Files.Upload(ctx, bytes.NewReader(imageData), &genai.UploadFileConfig{
		MIMEType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: upload page image: %w", err)
	}
	defer func() {
		if _, err := c.genai.Files.Delete(ctx, file.Name, nil); err != nil {
			c.logger.Warn("failed to delete uploaded file", "file", file.Name, "error", err)
		}
	}()

	prompt := req.CustomPrompt
	if prompt == "" {
		prompt = fmt.Sprintf(
			"OCR the page in %s only return ocr. If two pages, ocr the left page first and then the right page.",
			req.Language)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromURI(file.URI, file.MIMEType),
		}, genai.RoleUser),
	}

	text, err := c.generate(ctx, "ocr", contents)
	if err != nil {
		return nil, err
	}
	return &provider.OCRResult{Text: text}, nil
}

// ProcessTranslation submits a text prompt and returns the raw response.
func (c *Client) ProcessTranslation(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, "translation", genai.Text(prompt))
}

// Shutdown releases pooled HTTP connections. Idempotent.
func (c *Client) Shutdown(ctx context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// generate runs one generation call under the client's limiters and retry
// policy. The limiters are held across the whole retry loop so a retrying
// call cannot double-book in-flight slots.
func (c *Client) generate(ctx context.Context, op string, contents []*genai.Content) (string, error) {
	release, err := c.gate.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", op, err)
	}
	defer release()

	var text string
	err = provider.Retry(ctx, c.logger, c.retry, Name, op, func(ctx context.Context) error {
		resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, nil)
		if err != nil {
			return err
		}
		out := resp.Text()
		if out == "" {
			return fmt.Errorf("empty response from model %s", c.model)
		}
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// downloadImage fetches the page image, retrying transient failures with
// exponential backoff plus jitter. Exhaustion surfaces ErrDownloadFailed.
func (c *Client) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.downloadRetry.MaxAttempts; attempt++ {
		data, err := c.fetch(ctx, imageURL)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt == c.downloadRetry.MaxAttempts {
			break
		}
		backoff := float64(c.downloadRetry.BaseDelay) * math.Pow(2, float64(attempt-1))
		delay := time.Duration(backoff) + time.Duration(rand.Float64()*float64(time.Second))
		c.logger.Warn("retrying image download",
			"url", imageURL,
			"attempt", attempt,
			"delay", delay,
			"error", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", provider.ErrDownloadFailed, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v",
		provider.ErrDownloadFailed, imageURL, c.downloadRetry.MaxAttempts, lastErr)
}

func (c *Client) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching image", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// probeMIMEType issues a HEAD request for the image's Content-Type, falling
// back to image/jpeg when the probe fails.
func (c *Client) probeMIMEType(ctx context.Context, imageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return fallbackMIMEType
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fallbackMIMEType
	}
	defer func() { _ = resp.Body.Close() }()

	if mime := resp.Header.Get("Content-Type"); mime != "" {
		return mime
	}
	return fallbackMIMEType
}
