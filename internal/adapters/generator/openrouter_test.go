package generator

import (
	"context"
	"errors"
	"hyperbot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/revrost/go-openrouter"
	"github.com/stretchr/testify/assert"
)

// mockClient is a test double for the chatCompleter interface.
type mockClient struct {
	request                  openrouter.ChatCompletionRequest
	createChatCompletionFunc func(ctx context.Context,
		ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

func (m *mockClient) CreateChatCompletion(ctx context.Context,
	ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
	m.request = ccr
	return m.createChatCompletionFunc(ctx, ccr)
}

func reply(text string) openrouter.ChatCompletionResponse {
	return openrouter.ChatCompletionResponse{
		Choices: []openrouter.ChatCompletionChoice{{
			Message: openrouter.ChatCompletionMessage{
				Content: openrouter.Content{Text: text},
			},
		}},
		Model: "openai/gpt-4o-mini",
		Usage: openrouter.Usage{
			CompletionTokens: 7,
			TotalTokens:      9,
		},
	}
}

func TestOpenRouter_GenerateFromPrompt(t *testing.T) {
	apiErr := errors.New("api failure")

	testCases := []struct {
		name         string
		systemPrompt string
		prompts      []domain.Prompt
		mockResp     openrouter.ChatCompletionResponse
		mockErr      error
		expectedResp domain.ModelResponse
		wantRoles    []string
		expectErr    error
	}{
		{
			name:         "success, single user prompt",
			systemPrompt: "system",
			prompts: []domain.Prompt{
				{Prompt: "Kasun: hi", Author: domain.User, Model: "openai/gpt-4o-mini"},
			},
			mockResp: reply("hello!"),
			expectedResp: domain.ModelResponse{
				Response: "hello!",
				Metadata: domain.ResponseMetadata{
					Model:            "openai/gpt-4o-mini",
					CompletionTokens: 7,
					TotalTokens:      9,
				},
			},
			wantRoles: []string{openrouter.ChatMessageRoleSystem, openrouter.ChatMessageRoleUser},
		},
		{
			name: "history without system prompt",
			prompts: []domain.Prompt{
				{Prompt: "Kasun: hi", Author: domain.User, Model: "openai/gpt-4o-mini"},
				{Prompt: "hello!", Author: domain.System},
				{Prompt: "Kasun: how are you", Author: domain.User, Model: "openai/gpt-4o-mini"},
			},
			mockResp: reply("fine"),
			expectedResp: domain.ModelResponse{
				Response: "fine",
				Metadata: domain.ResponseMetadata{
					Model:            "openai/gpt-4o-mini",
					CompletionTokens: 7,
					TotalTokens:      9,
				},
			},
			wantRoles: []string{
				openrouter.ChatMessageRoleUser,
				openrouter.ChatMessageRoleAssistant,
				openrouter.ChatMessageRoleUser,
			},
		},
		{
			name:         "API error returned",
			systemPrompt: "system",
			prompts: []domain.Prompt{
				{Prompt: "fail", Author: domain.User, Model: "openai/gpt-4o-mini"},
			},
			mockErr:   apiErr,
			expectErr: apiErr,
		},
		{
			name:      "no choices",
			prompts:   []domain.Prompt{{Prompt: "hi", Author: domain.User}},
			expectErr: ErrNoChoices,
		},
		{
			name:      "no prompts",
			expectErr: domain.ErrEmptyPrompt,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockClient{
				createChatCompletionFunc: func(_ context.Context,
					_ openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
					return tc.mockResp, tc.mockErr
				},
			}
			gen := &OpenRouter{
				client:       mock,
				systemPrompt: tc.systemPrompt,
			}

			resp, err := gen.GenerateFromPrompt(t.Context(), tc.prompts)
			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedResp, resp)

			roles := make([]string, len(mock.request.Messages))
			for i, m := range mock.request.Messages {
				roles[i] = m.Role
			}
			assert.Equal(t, tc.wantRoles, roles)
			assert.Equal(t, "openai/gpt-4o-mini", mock.request.Model)
		})
	}
}
