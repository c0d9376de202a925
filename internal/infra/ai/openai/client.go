package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/resale-intel/internal/domain/ai"
	"github.com/bryanwahyu/resale-intel/internal/infra/ai/prompt"
)

const (
	maxTokens         = 2048
	prospectMaxTokens = 512
)

type Client struct {
	*openai.Client
	Model         string
	ProspectModel string
}

// NewClient returns a vision client. The key is mandatory; every analysis
// call would fail without it, so refuse to construct instead.
func NewClient(apiKey, model, prospectModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domai.ErrMissingAPIKey
	}
	return &Client{
		Client:        openai.NewClient(apiKey),
		Model:         model,
		ProspectModel: prospectModel,
	}, nil
}

// AnalyzeItem runs the full identification + market + authentication pass.
func (c *Client) AnalyzeItem(ctx context.Context, req domai.ItemRequest) (string, error) {
	if len(req.ImageURLs) == 0 {
		return "", domai.ErrNoImages
	}
	return c.complete(ctx,
		c.model(),
		maxTokens,
		prompt.GetItemSystemPrompt(),
		prompt.GetItemUserPrompt(req.Title, req.Category, req.Condition),
		req.ImageURLs,
		prompt.ItemSchema,
	)
}

// AnalyzeProspect runs the preliminary pass on the cheaper model.
func (c *Client) AnalyzeProspect(ctx context.Context, req domai.ItemRequest) (string, error) {
	if len(req.ImageURLs) == 0 {
		return "", domai.ErrNoImages
	}
	return c.complete(ctx,
		c.prospectModel(),
		prospectMaxTokens,
		prompt.GetProspectSystemPrompt(),
		prompt.GetProspectUserPrompt(req.Title, req.Category),
		req.ImageURLs,
		prompt.ProspectSchema,
	)
}

// ReadBarcode reads a barcode off a photo and identifies the product.
func (c *Client) ReadBarcode(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", domai.ErrNoImages
	}
	return c.complete(ctx,
		c.prospectModel(),
		prospectMaxTokens,
		prompt.GetBarcodeSystemPrompt(),
		prompt.GetBarcodeImagePrompt(),
		[]string{imageURL},
		prompt.BarcodeSchema,
	)
}

// LookupBarcode identifies a product from a raw barcode value. Text-only call.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (string, error) {
	return c.complete(ctx,
		c.prospectModel(),
		prospectMaxTokens,
		prompt.GetBarcodeSystemPrompt(),
		prompt.GetBarcodeLookupPrompt(barcode),
		nil,
		prompt.BarcodeSchema,
	)
}

// ExtractText transcribes the visible text on a single photo.
func (c *Client) ExtractText(ctx context.Context, imageURL string) ([]string, error) {
	if imageURL == "" {
		return nil, domai.ErrNoImages
	}
	raw, err := c.complete(ctx,
		c.prospectModel(),
		prospectMaxTokens,
		prompt.GetOCRSystemPrompt(),
		prompt.GetOCRUserPrompt(),
		[]string{imageURL},
		prompt.OCRSchema,
	)
	if err != nil {
		return nil, err
	}
	var out struct {
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domai.ErrParse, err)
	}
	return out.Lines, nil
}

// complete sends one chat completion with image parts and validates the
// reply against the operation schema before returning it.
func (c *Client) complete(ctx context.Context, model string, tokens int, system, user string, imageURLs []string, schema string) (string, error) {
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: user},
	}
	for _, u := range imageURLs {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    u,
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = tokens
	} else {
		req.MaxTokens = tokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapProviderErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", domai.ErrParse)
	}

	content := resp.Choices[0].Message.Content
	if err := prompt.Validate(schema, content); err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) model() string {
	if c.Model == "" {
		return "gpt-4o"
	}
	return c.Model
}

func (c *Client) prospectModel() string {
	if c.ProspectModel == "" {
		return c.model()
	}
	return c.ProspectModel
}

func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") ||
		strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") ||
		strings.HasPrefix(model, "gpt-5")
}

// mapProviderErr folds transport and provider errors into the domain sentinels.
func mapProviderErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429:
			return fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		case 401, 403:
			return fmt.Errorf("%w: %v", domai.ErrMissingAPIKey, err)
		}
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domai.ErrTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", domai.ErrTimeout, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%w: %v", domai.ErrNetwork, err)
	}
	return err
}
