package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hyperbot/internal/core/port"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrRelayStatus = errors.New("relay API returned an error status")
	ErrNoResults   = errors.New("no results found")
)

// LolHuman resolves social media links through the lolhuman relay API.
type LolHuman struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewLolHuman(baseURL, apiKey string) *LolHuman {
	return &LolHuman{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// count accepts both JSON numbers and numeric strings.
type count int64

func (c *count) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", data, err)
	}

	*c = count(n)
	return nil
}

type tiktokResponse struct {
	Link        string `json:"link"`
	Description string `json:"description"`
	Author      struct {
		Nickname string `json:"nickname"`
		Username string `json:"username"`
	} `json:"author"`
	Statistic struct {
		LikeCount    count `json:"like_count"`
		ShareCount   count `json:"share_count"`
		CommentCount count `json:"comment_count"`
		PlayCount    count `json:"play_count"`
	} `json:"statistic"`
}

func (l *LolHuman) TikTok(ctx context.Context, link string) (port.TikTokResult, error) {
	var result tiktokResponse
	if err := l.get(ctx, "tiktok", url.Values{"url": {link}}, &result); err != nil {
		return port.TikTokResult{}, fmt.Errorf("failed to fetch TikTok data: %w", err)
	}

	return port.TikTokResult{
		Link:        result.Link,
		Author:      result.Author.Nickname,
		Username:    result.Author.Username,
		Description: result.Description,
		Likes:       int64(result.Statistic.LikeCount),
		Shares:      int64(result.Statistic.ShareCount),
		Comments:    int64(result.Statistic.CommentCount),
		Views:       int64(result.Statistic.PlayCount),
	}, nil
}

type youtubeResponse struct {
	Title     string `json:"title"`
	Uploader  string `json:"uploader"`
	Duration  string `json:"duration"`
	View      string `json:"view"`
	Published string `json:"published"`
	Thumbnail string `json:"thumbnail"`
	Link      struct {
		Link string `json:"link"`
		Size count  `json:"size"`
	} `json:"link"`
}

func (l *LolHuman) YouTubeVideo(ctx context.Context, link string) (port.YouTubeResult, error) {
	return l.youtube(ctx, "ytvideo", link)
}

func (l *LolHuman) YouTubeAudio(ctx context.Context, link string) (port.YouTubeResult, error) {
	return l.youtube(ctx, "ytaudio", link)
}

func (l *LolHuman) youtube(ctx context.Context, endpoint, link string) (port.YouTubeResult, error) {
	var result youtubeResponse
	if err := l.get(ctx, endpoint, url.Values{"url": {link}}, &result); err != nil {
		return port.YouTubeResult{}, fmt.Errorf("failed to fetch YouTube data: %w", err)
	}

	return port.YouTubeResult{
		Title:     result.Title,
		Uploader:  result.Uploader,
		Duration:  result.Duration,
		Views:     result.View,
		Published: result.Published,
		Thumbnail: result.Thumbnail,
		Link:      result.Link.Link,
		Size:      int64(result.Link.Size),
	}, nil
}

func (l *LolHuman) YouTubeSearch(ctx context.Context, query string) (string, error) {
	var results []struct {
		VideoID string `json:"videoId"`
	}
	if err := l.get(ctx, "ytsearch", url.Values{"query": {query}}, &results); err != nil {
		return "", fmt.Errorf("failed to search YouTube: %w", err)
	}

	if len(results) == 0 || results[0].VideoID == "" {
		return "", fmt.Errorf("no YouTube videos found for the search query: %w", ErrNoResults)
	}

	return results[0].VideoID, nil
}

func (l *LolHuman) Instagram(ctx context.Context, link string) ([]string, error) {
	var result []string
	if err := l.get(ctx, "instagram", url.Values{"url": {link}}, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch Instagram data: %w", err)
	}

	return result, nil
}

func (l *LolHuman) Facebook(ctx context.Context, link string) (string, error) {
	var result string
	if err := l.get(ctx, "facebook", url.Values{"url": {link}}, &result); err != nil {
		return "", fmt.Errorf("failed to fetch Facebook data: %w", err)
	}

	if result == "" {
		return "", fmt.Errorf("failed to fetch Facebook data: %w", ErrNoResults)
	}

	return result, nil
}

type tweetResponse struct {
	Text     string `json:"text"`
	Likes    count  `json:"likes"`
	Retweets count  `json:"retweets"`
	Author   struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"author"`
	Media []struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"media"`
}

func (l *LolHuman) Twitter(ctx context.Context, link string) (port.TweetResult, error) {
	var result tweetResponse
	if err := l.get(ctx, "twitter", url.Values{"url": {link}}, &result); err != nil {
		return port.TweetResult{}, fmt.Errorf("failed to fetch Twitter/X data: %w", err)
	}

	media := make([]port.TweetMedia, len(result.Media))
	for i, m := range result.Media {
		media[i] = port.TweetMedia{Type: m.Type, URL: m.URL}
	}

	return port.TweetResult{
		Author:     result.Author.Name,
		ScreenName: result.Author.ScreenName,
		Text:       result.Text,
		Likes:      int64(result.Likes),
		Retweets:   int64(result.Retweets),
		Media:      media,
	}, nil
}

// get calls an API endpoint and decodes the result field of a successful envelope into out.
func (l *LolHuman) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("apikey", l.apiKey)
	target := fmt.Sprintf("%s/api/%s?%s", l.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("error creating GET request for relay API")
		return err
	}

	res, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("error executing relay request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("error reading relay response: %w", err)
	}

	log.Debug().Str("endpoint", endpoint).Int("status", res.StatusCode).Int("bytes", len(body)).
		Msg("relay response")

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http %d", ErrRelayStatus, res.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("error unmarshalling relay response: %w", err)
	}

	if env.Status != http.StatusOK {
		return fmt.Errorf("%w: %d %s", ErrRelayStatus, env.Status, env.Message)
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("error unmarshalling relay result: %w", err)
	}

	return nil
}
