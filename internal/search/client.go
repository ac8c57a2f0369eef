package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Client implements service.Searcher against the Reddit and YouTube public
// search APIs. Each platform sits behind its own circuit breaker so a flapping
// upstream fails fast instead of stalling discovery runs.
type Client struct {
	httpClient *http.Client
	cfg        config.SearchConfig
	reddit     *gobreaker.CircuitBreaker
	youtube    *gobreaker.CircuitBreaker
	log        zerolog.Logger
}

// New creates a search client
func New(cfg config.SearchConfig, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cfg:        cfg,
		reddit:     newBreaker("reddit-search"),
		youtube:    newBreaker("youtube-search"),
		log:        log.With().Str("component", "search").Logger(),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// Search dispatches one target to its platform's API
func (c *Client) Search(ctx context.Context, target service.SearchTarget) ([]service.Candidate, error) {
	switch target.Platform {
	case "reddit":
		return c.searchReddit(ctx, target)
	case "youtube":
		return c.searchYouTube(ctx, target)
	default:
		return nil, fmt.Errorf("unknown search platform %q", target.Platform)
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID        string  `json:"id"`
				Title     string  `json:"title"`
				Selftext  string  `json:"selftext"`
				Permalink string  `json:"permalink"`
				Subreddit string  `json:"subreddit"`
				CreatedAt float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (c *Client) searchReddit(ctx context.Context, target service.SearchTarget) ([]service.Candidate, error) {
	endpoint := fmt.Sprintf(
		"https://www.reddit.com/r/%s/search.json?q=%s&restrict_sr=1&sort=new&limit=%d",
		url.PathEscape(target.Subreddit), url.QueryEscape(target.Query), c.cfg.MaxResults,
	)

	body, err := c.get(ctx, c.reddit, endpoint, map[string]string{"User-Agent": c.cfg.RedditUserAgent})
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("reddit response: %w", err)
	}

	candidates := make([]service.Candidate, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		candidates = append(candidates, service.Candidate{
			NativeID:    d.ID,
			Title:       d.Title,
			Body:        d.Selftext,
			URL:         "https://www.reddit.com" + d.Permalink,
			SubLabel:    d.Subreddit,
			PublishedAt: time.Unix(int64(d.CreatedAt), 0).UTC().Format(time.RFC3339),
		})
	}

	return candidates, nil
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) searchYouTube(ctx context.Context, target service.SearchTarget) ([]service.Candidate, error) {
	if c.cfg.YouTubeAPIKey == "" {
		return nil, fmt.Errorf("youtube search: api key not configured")
	}

	endpoint := fmt.Sprintf(
		"https://www.googleapis.com/youtube/v3/search?part=snippet&q=%s&type=video&order=relevance&maxResults=%d&key=%s",
		url.QueryEscape(target.Query), c.cfg.MaxResults, url.QueryEscape(c.cfg.YouTubeAPIKey),
	)

	body, err := c.get(ctx, c.youtube, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result youtubeSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("youtube response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("youtube api: %s", result.Error.Message)
	}

	candidates := make([]service.Candidate, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		candidates = append(candidates, service.Candidate{
			NativeID:    item.ID.VideoID,
			Title:       item.Snippet.Title,
			Body:        item.Snippet.Description,
			URL:         "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}

	return candidates, nil
}

func (c *Client) get(ctx context.Context, breaker *gobreaker.CircuitBreaker, endpoint string, headers map[string]string) ([]byte, error) {
	result, err := breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func truncate(body []byte) string {
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
