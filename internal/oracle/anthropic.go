package oracle

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/evidence"
)

const (
	DefaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_20250514)
	anthropicMaxTokens    = 8192
	anthropicKeyEnv       = "ANTHROPIC_API_KEY"
)

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

// AnthropicClient sends requests through the Messages API. The response
// schema has no native slot there, so it rides in the instructions.
type AnthropicClient struct {
	model    string
	messages AnthropicMessager
}

// NewAnthropicClient never fails; a blank key is reported by Send.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if strings.TrimSpace(model) == "" {
		model = DefaultAnthropicModel
	}
	c := &AnthropicClient{model: model}
	if key := strings.TrimSpace(apiKey); key != "" {
		c.messages = newAnthropicClient(key)
	}
	return c
}

func (a *AnthropicClient) ModelName() string { return a.model }

func (a *AnthropicClient) Send(ctx context.Context, req Request) (string, error) {
	if a.messages == nil {
		return "", missingCredential(anthropicKeyEnv)
	}
	blocks, err := anthropicBlocks(req)
	if err != nil {
		return "", err
	}
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   anthropicMaxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", transportError(ProviderAnthropic, err)
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// anthropicBlocks puts the instructions first and the attachments after
// them in their original order.
func anthropicBlocks(req Request) ([]anthropic.ContentBlockParamUnion, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Attachments)+1)
	blocks = append(blocks, anthropic.NewTextBlock(req.Instructions))
	for i, doc := range req.Attachments {
		mt := claims.NormalizeMediaType(doc.MediaType)
		switch {
		case mt == evidence.MediaPDF:
			blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: doc.Payload}))
		case evidence.Allowed(mt) && evidence.IsImage(mt):
			blocks = append(blocks, anthropic.NewImageBlockBase64(mt, doc.Payload))
		default:
			return nil, claims.NewError(claims.CodeUnsupportedMediaType,
				fmt.Sprintf("attachment %d has media type %q", i, doc.MediaType), nil)
		}
	}
	return blocks, nil
}
