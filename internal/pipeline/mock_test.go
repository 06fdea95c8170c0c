package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/lease-abstract-cli/internal/render"
	"github.com/sells-group/lease-abstract-cli/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Renderer Mock ---

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) RenderPages(ctx context.Context, path string) ([]render.Page, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]render.Page), args.Error(1)
}

// textResponse builds a single-text-block model response.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Model:   "claude-sonnet-4-5-20250929",
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 1200, OutputTokens: 300},
	}
}
