package commands

import (
	"context"
	"fmt"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Sticker turns a quoted image into a sticker.
type Sticker struct {
	converter port.StickerConverter
}

func NewSticker(converter port.StickerConverter) *Sticker {
	return &Sticker{converter: converter}
}

func (s *Sticker) Respond(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if dc.Quoted.Kind != domain.KindImage {
		return dc.Reply(ctx, "reply to an image to turn it into a sticker")
	}

	data, _, err := conn.DownloadQuoted(ctx, msg)
	if err != nil {
		return fmt.Errorf("downloading quoted image: %w", err)
	}

	sticker, err := s.converter.Sticker(ctx, data)
	if err != nil {
		log.Error().Err(err).Str("messageId", msg.ID).Msg("sticker conversion failed")
		return dc.Reply(ctx, "❌ could not convert that image")
	}

	return conn.SendMediaBytes(ctx, msg.ChatID, domain.KindSticker, sticker, msg)
}
