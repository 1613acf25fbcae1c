package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoutil"
	"github.com/sony/gobreaker"
)

// YeenClient fetches random hyena image URLs with retry and circuit breaker.
type YeenClient struct {
	baseURL string
	retry   *retryablehttp.Client
	breaker *gobreaker.CircuitBreaker
	logger  botpkg.Logger
}

type yeenResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// NewYeenClient creates a client for the yeen.land API.
func NewYeenClient(baseURL string, timeout time.Duration, logger botpkg.Logger) *YeenClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	settings := gobreaker.Settings{
		Name:        "yeen-api",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}

	return &YeenClient{
		baseURL: baseURL,
		retry:   client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// RandomImageURL fetches a random hyena image URL.
func (c *YeenClient) RandomImageURL(ctx context.Context) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
		if err != nil {
			return "", err
		}

		resp, err := c.retry.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("yeen: unexpected status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return "", err
		}

		var decoded yeenResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return "", fmt.Errorf("yeen: decode response: %w", err)
		}
		if decoded.URL == "" {
			return "", errors.New("yeen: response missing url")
		}
		return decoded.URL, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// YeenHandler handles /yeen by posting a random hyena picture.
type YeenHandler struct {
	Client      *YeenClient
	Logger      botpkg.Logger
	RateLimiter *telegram.RateLimiter
}

func (h *YeenHandler) Handle(ctx context.Context, b telegram.API, update *telego.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}
	message := update.Message

	url, err := h.Client.RandomImageURL(ctx)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("yeen fetch failed", "chat_id", message.Chat.ID, "error", err)
		}
		return reply(ctx, h.RateLimiter, b, message, yeenFailed)
	}

	params := &telego.SendPhotoParams{
		ChatID: telego.ChatID{ID: message.Chat.ID},
		Photo:  telegoutil.FileFromURL(url),
		ReplyParameters: &telego.ReplyParameters{
			MessageID: message.MessageID,
		},
	}
	if _, err := telegram.SendPhotoWithRetry(ctx, h.RateLimiter, b, params); err != nil {
		if h.Logger != nil {
			h.Logger.Error("yeen photo send failed", "chat_id", message.Chat.ID, "error", err)
		}
		// URL send can fail if Telegram cannot fetch the file, fall back to the link.
		return reply(ctx, h.RateLimiter, b, message, url)
	}
	return nil
}
