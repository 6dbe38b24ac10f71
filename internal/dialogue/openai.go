package dialogue

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"

	"ardomis/internal/memory"
)

type ChatOptions struct {
	FastModel  string
	DeepModel  string
	FastTokens int
	DeepTokens int
}

// Chat is a client for any OpenAI-compatible chat completion endpoint,
// DeepSeek by default.
type Chat struct {
	client openai.Client
	opt    ChatOptions
}

func NewChat(client openai.Client, opt ChatOptions) *Chat {
	if opt.FastModel == "" {
		opt.FastModel = "deepseek-chat"
	}
	if opt.DeepModel == "" {
		opt.DeepModel = opt.FastModel
	}
	if opt.FastTokens <= 0 {
		opt.FastTokens = 180
	}
	if opt.DeepTokens <= 0 {
		opt.DeepTokens = opt.FastTokens
	}
	return &Chat{client: client, opt: opt}
}

func (c *Chat) Reply(ctx context.Context, system string, history []memory.Message, user string, deep bool) (string, error) {
	model, tokens := c.opt.FastModel, c.opt.FastTokens
	if deep {
		model, tokens = c.opt.DeepModel, c.opt.DeepTokens
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:  chatMessages(system, history, user),
		Model:     openai.ChatModel(model),
		MaxTokens: openai.Int(int64(tokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	out := strings.ReplaceAll(resp.Choices[0].Message.Content, "\n", " ")
	return strings.TrimSpace(out), nil
}

func chatMessages(system string, history []memory.Message, user string) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(system))
	for _, m := range history {
		switch m.Role {
		case memory.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return append(msgs, openai.UserMessage(strings.TrimSpace(user)))
}
