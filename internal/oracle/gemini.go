package oracle

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/evidence"
)

const (
	DefaultGeminiModel = "gemini-2.0-flash"
	geminiKeyEnv       = "GEMINI_API_KEY"
)

// GeminiModels is the slice of *genai.Models the client uses.
type GeminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient passes the response schema natively and sends attachments as
// inline parts.
type GeminiClient struct {
	model  string
	models GeminiModels
}

// NewGeminiClient only fails when the SDK rejects its configuration; a blank
// key is reported by Send.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	c := &GeminiClient{model: model}
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return c, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.models = client.Models
	return c, nil
}

func (g *GeminiClient) ModelName() string { return g.model }

func (g *GeminiClient) Send(ctx context.Context, req Request) (string, error) {
	if g.models == nil {
		return "", missingCredential(geminiKeyEnv)
	}
	parts := []*genai.Part{genai.NewPartFromText(req.Instructions)}
	for i, doc := range req.Attachments {
		mt := claims.NormalizeMediaType(doc.MediaType)
		if !evidence.Allowed(mt) {
			return "", claims.NewError(claims.CodeUnsupportedMediaType,
				fmt.Sprintf("attachment %d has media type %q", i, doc.MediaType), nil)
		}
		data, err := evidence.Decode(doc)
		if err != nil {
			return "", claims.NewError(claims.CodeInvalidEvent, fmt.Sprintf("attachment %d is not valid base64", i), err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, mt))
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0),
	}
	if req.ResponseSchema != nil {
		config.ResponseSchema = req.ResponseSchema.toGenAI()
	}

	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return "", transportError(ProviderGemini, err)
	}
	return resp.Text(), nil
}

var genaiTypes = map[string]genai.Type{
	TypeObject: genai.TypeObject,
	TypeArray:  genai.TypeArray,
	TypeString: genai.TypeString,
	TypeNumber: genai.TypeNumber,
}

func (s *Schema) toGenAI() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:     genaiTypes[s.Type],
		Enum:     s.Enum,
		Required: s.Required,
		Items:    s.Items.toGenAI(),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = p.toGenAI()
		}
	}
	return out
}
