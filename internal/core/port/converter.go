package port

import "context"

type StickerConverter interface {
	Sticker(ctx context.Context, image []byte) ([]byte, error)
}
