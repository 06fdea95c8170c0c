package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-abstract-cli/internal/config"
	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/pkg/anthropic"
)

func TestClassify(t *testing.T) {
	ctx := context.Background()
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", ctx, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse("NNN"), nil).Once()

	aiCfg := config.AnthropicConfig{ClassifyModel: "claude-haiku-4-5-20251001", Temperature: 0.0}
	c, err := Classify(ctx, aiClient, aiCfg, "Suite200_Lease.pdf", "This triple-net lease (NNN)...")

	require.NoError(t, err)
	assert.Equal(t, model.SubtypeNNN, c.Subtype)
	assert.Equal(t, "NNN", c.RawText)
	aiClient.AssertExpectations(t)
}

func TestClassify_UsesFirstPageAndClassifyModel(t *testing.T) {
	ctx := context.Background()
	aiClient := &mockAnthropicClient{}

	var captured anthropic.MessageRequest
	aiClient.On("CreateMessage", ctx, mock.AnythingOfType("anthropic.MessageRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(anthropic.MessageRequest)
		}).
		Return(textResponse("FSG"), nil).Once()

	aiCfg := config.AnthropicConfig{ClassifyModel: "claude-haiku-4-5-20251001"}
	_, err := Classify(ctx, aiClient, aiCfg, "lease.pdf", "OFFICE LEASE AGREEMENT")

	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5-20251001", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, captured.Messages[0].Parts[0].Text, "OFFICE LEASE AGREEMENT")
	assert.Contains(t, captured.Messages[0].Parts[0].Text, "lease.pdf")
	require.NotEmpty(t, captured.System)
	assert.Contains(t, captured.System[0].Text, "triple net")
}

func TestClassify_ModelErrorIsFatal(t *testing.T) {
	ctx := context.Background()
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", ctx, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(nil, errors.New("overloaded")).Once()

	_, err := Classify(ctx, aiClient, config.AnthropicConfig{}, "lease.pdf", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classify lease.pdf")
}

func TestParseSubtype(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.DocumentSubtype
	}{
		{"bare code", "NNN", model.SubtypeNNN},
		{"code in sentence", "The document is an FSG lease.", model.SubtypeFSG},
		{"lowercase prose ignored", "the signing block follows", model.SubtypeFSG},
		{"industrial gross", "IG", model.SubtypeIG},
		{"absolute net", "ANN", model.SubtypeANN},
		{"priority order wins", "Could be NNN or MG.", model.SubtypeNNN},
		{"no code defaults to FSG", "a standard office lease", model.DefaultSubtype},
		{"empty defaults to FSG", "", model.SubtypeFSG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSubtype(tt.raw))
		})
	}
}
