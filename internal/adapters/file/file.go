package file

import (
	"context"
	"fmt"
	"hyperbot/internal/core/domain"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Download is the fetched body of a media URL.
type Download struct {
	Data     []byte
	Mimetype string
}

// DownloadFile returns the byte content of a file on a provided URL. A positive maxBytes rejects larger
// files with domain.ErrFileTooLarge, either up front from the announced length or while reading.
func DownloadFile(ctx context.Context, path string, maxBytes int64) (Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return Download{}, err
	}

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return Download{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		log.Error().Err(err).Str("path", path).Send()
		return Download{}, err
	}

	if maxBytes > 0 && res.ContentLength > maxBytes {
		log.Warn().Int64("length", res.ContentLength).Int64("max", maxBytes).Str("path", path).
			Msg("refusing download")
		return Download{}, fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, res.ContentLength)
	}

	var body io.Reader = res.Body
	if maxBytes > 0 {
		body = io.LimitReader(res.Body, maxBytes+1)
	}

	buf, err := io.ReadAll(body)
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return Download{}, err
	}

	if maxBytes > 0 && int64(len(buf)) > maxBytes {
		return Download{}, fmt.Errorf("%w: more than %d bytes", domain.ErrFileTooLarge, maxBytes)
	}

	mimetype := res.Header.Get("Content-Type")
	if mimetype == "" || strings.HasPrefix(mimetype, "application/octet-stream") {
		mimetype = http.DetectContentType(buf)
	}

	return Download{Data: buf, Mimetype: mimetype}, nil
}
