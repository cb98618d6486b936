package commands

import (
	"context"
	"errors"
	"fmt"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	reactPending = "⏳"
	reactDone    = "✅"
	reactFailed  = "❌"
	reactWarning = "⚠️"

	maxVideoSize = 100 * 1024 * 1024
	signature    = "_Downloaded by HYPER-MD Bot_"
)

var (
	tiktokPattern    = regexp.MustCompile(`(?i)(https?://\S*tiktok\S+)`)
	instagramPattern = regexp.MustCompile(`(?i)(https?://\S*instagram\S+)`)
	facebookPattern  = regexp.MustCompile(`(?i)(https?://\S*facebook\S+|https?://\S*fb\.\S+)`)
	twitterPattern   = regexp.MustCompile(`(?i)(https?://\S*twitter\S+|https?://\S*x\.com\S+)`)
	youtubePattern   = regexp.MustCompile(
		`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

	errNoMedia = errors.New("no media found")
)

// Downloader relays social media posts into the chat. Every handler reacts with a progress emoji and
// reports relay failures as errors.
type Downloader struct {
	resolver port.MediaResolver
	delay    time.Duration
}

func NewDownloader(resolver port.MediaResolver, delay time.Duration) *Downloader {
	return &Downloader{resolver: resolver, delay: delay}
}

func (d *Downloader) logger(msg *domain.Message, dc *domain.DispatchContext) zerolog.Logger {
	return log.With().
		Str("messageId", msg.ID).
		Str("chatId", msg.ChatID).
		Str("command", dc.Command).
		Str("trace", dc.Trace).
		Logger()
}

func (d *Downloader) TikTok(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	l := d.logger(msg, dc)
	l.Info().Msg("handling request")

	if dc.Query == "" {
		return dc.Reply(ctx, "Please provide a TikTok URL")
	}

	react(ctx, conn, msg, reactPending)

	url := tiktokPattern.FindString(dc.Query)
	if url == "" {
		react(ctx, conn, msg, reactFailed)
		return dc.Reply(ctx, "Invalid TikTok URL. Please provide a valid TikTok link.")
	}

	result, err := d.resolver.TikTok(ctx, url)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading TikTok: %w", err))
	}

	caption := fmt.Sprintf("*TikTok Downloader*\n\n"+
		"👤 *Author:* %s (@%s)\n"+
		"📝 *Description:* %s\n"+
		"❤️ *Likes:* %d\n"+
		"🔄 *Shares:* %d\n"+
		"💬 *Comments:* %d\n"+
		"👁️ *Views:* %d\n\n%s",
		result.Author, result.Username, result.Description, result.Likes, result.Shares, result.Comments,
		result.Views, signature)

	err = conn.SendMedia(ctx, msg.ChatID, domain.Media{Kind: domain.KindVideo, URL: result.Link, Caption: caption},
		msg)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading TikTok: %w", err))
	}

	react(ctx, conn, msg, reactDone)
	return nil
}

func (d *Downloader) YouTubeVideo(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	l := d.logger(msg, dc)
	l.Info().Msg("handling request")

	if dc.Query == "" {
		return dc.Reply(ctx, "Please provide a YouTube URL or search term")
	}

	react(ctx, conn, msg, reactPending)

	url, err := d.youtubeURL(ctx, dc.Query)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading YouTube video: %w", err))
	}

	info, err := d.resolver.YouTubeVideo(ctx, url)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading YouTube video: %w", err))
	}

	if info.Size > maxVideoSize {
		react(ctx, conn, msg, reactWarning)
		return dc.Reply(ctx, fmt.Sprintf("⚠️ Video is too large (%dMB). Maximum allowed size is 100MB. "+
			"Try using the audio-only version with ytmp3", info.Size/(1024*1024)))
	}

	caption := fmt.Sprintf("*YouTube Downloader*\n\n%s\n\n%s", youtubeDetails("📹", info), signature)

	err = conn.SendMedia(ctx, msg.ChatID, domain.Media{Kind: domain.KindImage, URL: info.Thumbnail,
		Caption: caption}, msg)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading YouTube video: %w", err))
	}

	err = conn.SendMedia(ctx, msg.ChatID, domain.Media{Kind: domain.KindVideo, URL: info.Link,
		Mimetype: "video/mp4", FileName: info.Title + ".mp4"}, msg)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading YouTube video: %w", err))
	}

	react(ctx, conn, msg, reactDone)
	return nil
}

func (d *Downloader) YouTubeAudio(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	l := d.logger(msg, dc)
	l.Info().Msg("handling request")

	if dc.Query == "" {
		return dc.Reply(ctx, "Please provide a YouTube URL or search term")
	}

	react(ctx, conn, msg, reactPending)

	url, err := d.youtubeURL(ctx, dc.Query)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading YouTube audio: %w", err))
	}

	info, err := d.resolver.YouTubeAudio(ctx, url)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading YouTube audio: %w", err))
	}

	caption := fmt.Sprintf("*YouTube Audio Downloader*\n\n%s\n\n%s", youtubeDetails("🎵", info), signature)

	err = conn.SendMedia(ctx, msg.ChatID, domain.Media{Kind: domain.KindImage, URL: info.Thumbnail,
		Caption: caption}, msg)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading YouTube audio: %w", err))
	}

	err = conn.SendMedia(ctx, msg.ChatID, domain.Media{Kind: domain.KindAudio, URL: info.Link,
		Mimetype: "audio/mp4", FileName: info.Title + ".mp3"}, msg)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading YouTube audio: %w", err))
	}

	react(ctx, conn, msg, reactDone)
	return nil
}

func (d *Downloader) Instagram(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	l := d.logger(msg, dc)
	l.Info().Msg("handling request")

	if dc.Query == "" {
		return dc.Reply(ctx, "Please provide an Instagram URL")
	}

	react(ctx, conn, msg, reactPending)

	url := instagramPattern.FindString(dc.Query)
	if url == "" {
		react(ctx, conn, msg, reactFailed)
		return dc.Reply(ctx, "Invalid Instagram URL. Please provide a valid Instagram link.")
	}

	links, err := d.resolver.Instagram(ctx, url)
	if err == nil && len(links) == 0 {
		err = errNoMedia
	}
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading from Instagram: %w", err))
	}

	items := make([]domain.Media, len(links))
	for i, link := range links {
		items[i] = domain.Media{Kind: instagramKind(link), URL: link}
	}

	err = d.sendAll(ctx, conn, msg, items, "*Instagram Downloader*\n\n"+signature)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading from Instagram: %w", err))
	}

	react(ctx, conn, msg, reactDone)
	return nil
}

func (d *Downloader) Facebook(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	l := d.logger(msg, dc)
	l.Info().Msg("handling request")

	if dc.Query == "" {
		return dc.Reply(ctx, "Please provide a Facebook URL")
	}

	react(ctx, conn, msg, reactPending)

	url := facebookPattern.FindString(dc.Query)
	if url == "" {
		react(ctx, conn, msg, reactFailed)
		return dc.Reply(ctx, "Invalid Facebook URL. Please provide a valid Facebook link.")
	}

	link, err := d.resolver.Facebook(ctx, url)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading from Facebook: %w", err))
	}

	err = conn.SendMedia(ctx, msg.ChatID, domain.Media{Kind: domain.KindVideo, URL: link,
		Caption: "*Facebook Downloader*\n\n" + signature}, msg)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading from Facebook: %w", err))
	}

	react(ctx, conn, msg, reactDone)
	return nil
}

func (d *Downloader) Twitter(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	l := d.logger(msg, dc)
	l.Info().Msg("handling request")

	if dc.Query == "" {
		return dc.Reply(ctx, "Please provide a Twitter/X URL")
	}

	react(ctx, conn, msg, reactPending)

	url := twitterPattern.FindString(dc.Query)
	if url == "" {
		react(ctx, conn, msg, reactFailed)
		return dc.Reply(ctx, "Invalid Twitter/X URL. Please provide a valid Twitter/X link.")
	}

	tweet, err := d.resolver.Twitter(ctx, url)
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading from Twitter/X: %w", err))
	}

	caption := fmt.Sprintf("*Twitter/X Downloader*\n\n"+
		"👤 *Author:* %s (@%s)\n"+
		"📝 *Description:* %s\n"+
		"❤️ *Likes:* %d\n"+
		"🔄 *Retweets:* %d\n\n%s",
		tweet.Author, tweet.ScreenName, tweet.Text, tweet.Likes, tweet.Retweets, signature)

	items := make([]domain.Media, 0, len(tweet.Media))
	for _, media := range tweet.Media {
		switch media.Type {
		case "photo":
			items = append(items, domain.Media{Kind: domain.KindImage, URL: media.URL})
		case "video":
			items = append(items, domain.Media{Kind: domain.KindVideo, URL: media.URL})
		}
	}

	if len(items) == 0 {
		err = dc.Reply(ctx, caption)
	} else {
		err = d.sendAll(ctx, conn, msg, items, caption)
	}
	if err != nil {
		return d.fail(ctx, conn, msg, fmt.Errorf("downloading from Twitter/X: %w", err))
	}

	react(ctx, conn, msg, reactDone)
	return nil
}

// sendAll sends items in order with the caption on the first one, pausing between sends.
func (d *Downloader) sendAll(ctx context.Context, conn port.Transport, msg *domain.Message, items []domain.Media,
	caption string) error {
	for i, item := range items {
		if i == 0 {
			item.Caption = caption
		}

		if err := conn.SendMedia(ctx, msg.ChatID, item, msg); err != nil {
			return err
		}

		if i < len(items)-1 && d.delay > 0 {
			select {
			case <-time.After(d.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return nil
}

func (d *Downloader) youtubeURL(ctx context.Context, query string) (string, error) {
	if match := youtubePattern.FindStringSubmatch(query); match != nil {
		return "https://www.youtube.com/watch?v=" + match[1], nil
	}

	id, err := d.resolver.YouTubeSearch(ctx, query)
	if err != nil {
		return "", fmt.Errorf("searching YouTube: %w", err)
	}

	return "https://www.youtube.com/watch?v=" + id, nil
}

func (d *Downloader) fail(ctx context.Context, conn port.Transport, msg *domain.Message, err error) error {
	react(ctx, conn, msg, reactFailed)
	return err
}

func youtubeDetails(icon string, info port.YouTubeResult) string {
	return fmt.Sprintf("%s *Title:* %s\n"+
		"👤 *Channel:* %s\n"+
		"⏱️ *Duration:* %s\n"+
		"👁️ *Views:* %s\n"+
		"📅 *Published:* %s",
		icon, info.Title, info.Uploader, info.Duration, info.Views, info.Published)
}

func instagramKind(link string) domain.ContentKind {
	lower := strings.ToLower(link)
	if strings.Contains(lower, ".jpg") || strings.Contains(lower, ".jpeg") || strings.Contains(lower, ".png") {
		return domain.KindImage
	}

	return domain.KindVideo
}

// react is best-effort; failures are only logged.
func react(ctx context.Context, conn port.Transport, msg *domain.Message, emoji string) {
	if err := conn.React(ctx, msg, emoji); err != nil {
		log.Warn().Err(err).Str("messageId", msg.ID).Str("reaction", emoji).Msg("failed to react")
	}
}
