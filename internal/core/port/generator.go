package port

import (
	"context"
	"hyperbot/internal/core/domain"
)

type TextGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompts []domain.Prompt) (domain.ModelResponse, error)
}

type TikTokResult struct {
	Link        string
	Author      string
	Username    string
	Description string
	Likes       int64
	Shares      int64
	Comments    int64
	Views       int64
}

type YouTubeResult struct {
	Title     string
	Uploader  string
	Duration  string
	Views     string
	Published string
	Thumbnail string
	Link      string
	Size      int64
}

type TweetMedia struct {
	Type string
	URL  string
}

type TweetResult struct {
	Author     string
	ScreenName string
	Text       string
	Likes      int64
	Retweets   int64
	Media      []TweetMedia
}

// MediaResolver resolves social media links to directly downloadable media through a relay API.
type MediaResolver interface {
	TikTok(ctx context.Context, url string) (TikTokResult, error)
	YouTubeVideo(ctx context.Context, url string) (YouTubeResult, error)
	YouTubeAudio(ctx context.Context, url string) (YouTubeResult, error)
	// YouTubeSearch returns the id of the first video matching the query.
	YouTubeSearch(ctx context.Context, query string) (string, error)
	Instagram(ctx context.Context, url string) ([]string, error)
	Facebook(ctx context.Context, url string) (string, error)
	Twitter(ctx context.Context, url string) (TweetResult, error)
}

// VoiceCatalog maps trigger keywords to voice note URLs.
type VoiceCatalog interface {
	Voices(ctx context.Context) (map[string]string, error)
}
