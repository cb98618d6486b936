package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// StickerSize is the edge length WhatsApp expects for static stickers.
const StickerSize = 512

var ErrEmptyImage = errors.New("empty image")

type runner func(ctx context.Context, args []string, stdin []byte) ([]byte, error)

type Magick struct {
	magickBinary []string
	run          runner
}

func NewMagick() (*Magick, error) {
	m := &Magick{run: execute}
	commands := [][]string{{"magick", "-version"}, {"convert", "-version"}}

	for _, command := range commands {
		_, err := exec.Command(command[0], command[1:]...).Output()
		if err != nil {
			log.Debug().Strs("commands", command).Msg("binary not found")
			continue
		}

		log.Debug().Strs("commands", command).Msg("binary found")
		m.magickBinary = command[:len(command)-1]
		break
	}

	if len(m.magickBinary) == 0 {
		return nil, errors.New("magick binary not available")
	}

	return m, nil
}

// Sticker converts an image to a square transparent webp, the image scaled to fit and centered.
func (m *Magick) Sticker(ctx context.Context, image []byte) ([]byte, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	dimensions := fmt.Sprintf("%dx%d", StickerSize, StickerSize)
	args := append(append([]string{}, m.magickBinary...), "-",
		"-resize", dimensions,
		"-background", "none",
		"-gravity", "center",
		"-extent", dimensions,
		"webp:-")

	out, err := m.run(ctx, args, image)
	if err != nil {
		return nil, fmt.Errorf("magick conversion failed: %w", err)
	}

	log.Debug().Int("in", len(image)).Int("out", len(out)).Msg("magick commands finished")

	return out, nil
}

func execute(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error().Str("magickStderr", stderr.String()).Msg("magick commands failed")
		return nil, err
	}

	return stdout.Bytes(), nil
}
