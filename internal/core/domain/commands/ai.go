package commands

import (
	"context"
	"fmt"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// AI answers prompts through a text generator and keeps a short per-chat conversation history.
type AI struct {
	textGenerator port.TextGenerator
	model         string
	cacheDuration time.Duration
	cache         sync.Map
}

type Conversation struct {
	mu       sync.Mutex
	messages []domain.Prompt
	timer    *time.Timer
}

func NewAI(textGenerator port.TextGenerator, model string, cacheDuration time.Duration) *AI {
	return &AI{textGenerator: textGenerator, model: model, cacheDuration: cacheDuration}
}

func (h *AI) Respond(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	l := log.With().
		Str("messageId", msg.ID).
		Str("chatId", msg.ChatID).
		Str("command", dc.Command).
		Logger()

	l.Info().Msg("handling request")

	promptText := dc.Query
	if promptText == "" {
		l.Debug().Err(domain.ErrEmptyPrompt).Send()
		return dc.Reply(ctx, "please input a prompt")
	}

	if err := conn.SendPresence(ctx, msg.ChatID, domain.PresenceComposing); err != nil {
		l.Warn().Err(err).Msg("failed to send typing indicator")
	}

	conversation := h.conversation(msg.ChatID)
	conversation.mu.Lock()
	defer conversation.mu.Unlock()

	history := len(conversation.messages)
	if dc.Quoted.Present() && dc.Quoted.Text != "" {
		// the replied-to message becomes context for the prompt
		conversation.messages = append(conversation.messages, domain.Prompt{
			Author: domain.User,
			Model:  h.model,
			Prompt: domain.NumberOf(dc.Quoted.Participant) + ": " + dc.Quoted.Text,
		})
	}

	conversation.messages = append(conversation.messages, domain.Prompt{
		Author: domain.User,
		Model:  h.model,
		Prompt: dc.PushName + ": " + promptText,
	})

	response, err := h.textGenerator.GenerateFromPrompt(ctx, conversation.messages)
	if err != nil {
		l.Error().Err(err).Msg("failed to generate reply")
		conversation.messages = conversation.messages[:history]
		return fmt.Errorf("failed to generate reply: %w", err)
	}

	l.Debug().Str("model", response.Metadata.Model).Int("tokens", response.Metadata.TotalTokens).
		Msg("reply generated")
	conversation.messages = append(conversation.messages, domain.Prompt{Author: domain.System,
		Prompt: response.Response})

	return dc.Reply(ctx, response.Response)
}

// conversation returns the history of a chat and restarts its expiry timer.
func (h *AI) conversation(chatID string) *Conversation {
	c, loaded := h.cache.LoadOrStore(chatID, &Conversation{})
	conversation := c.(*Conversation)

	conversation.mu.Lock()
	defer conversation.mu.Unlock()

	if loaded && conversation.timer != nil {
		conversation.timer.Stop()
	} else {
		log.Debug().Str("chatId", chatID).Msg("new conversation")
	}

	conversation.timer = time.AfterFunc(h.cacheDuration, func() {
		log.Debug().Str("chatId", chatID).Msg("clearing conversation")
		h.cache.CompareAndDelete(chatID, conversation)
	})

	return conversation
}
