package dialogue

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"ardomis/internal/memory"
)

// Gemini is the alternate backend on the Gemini API. It has a single model,
// deep only raises the output budget.
type Gemini struct {
	client     *genai.Client
	model      string
	fastTokens int32
	deepTokens int32
}

func NewGemini(ctx context.Context, apiKey, model string, httpClient *http.Client, fastTokens, deepTokens int) (*Gemini, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &Gemini{
		client:     client,
		model:      model,
		fastTokens: int32(fastTokens),
		deepTokens: int32(max(fastTokens, deepTokens)),
	}, nil
}

func (g *Gemini) Reply(ctx context.Context, system string, history []memory.Message, user string, deep bool) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   g.fastTokens,
	}
	if deep {
		cfg.MaxOutputTokens = g.deepTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, geminiContents(history, user), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	out := strings.ReplaceAll(resp.Text(), "\n", " ")
	return strings.TrimSpace(out), nil
}

func geminiContents(history []memory.Message, user string) []*genai.Content {
	out := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == memory.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return append(out, genai.NewContentFromText(strings.TrimSpace(user), genai.RoleUser))
}
