package handler

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	botpkg "github.com/hyenabot/HyenaBot-Go/bot"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoutil"
	"github.com/nfnt/resize"
)

// transform is a single image operation parsed from a command verb.
type transform struct {
	verb   string
	amount int
	width  uint
	height uint
}

// parseTransforms parses command verbs into an ordered transform list.
// Unknown or malformed verbs abort the whole parse.
func parseTransforms(args []string) ([]transform, error) {
	transforms := make([]transform, 0, len(args))
	for _, arg := range args {
		verb, value, hasValue := strings.Cut(strings.ToLower(arg), "=")

		switch verb {
		case "invert", "greyscale", "grayscale", "fliph", "flipv":
			if hasValue {
				return nil, fmt.Errorf("verb %q takes no value", verb)
			}
			if verb == "grayscale" {
				verb = "greyscale"
			}
			transforms = append(transforms, transform{verb: verb})

		case "brighten", "contrast", "blur":
			if !hasValue {
				return nil, fmt.Errorf("verb %q needs a value, e.g. %s=10", verb, verb)
			}
			amount, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("verb %q: %q is not a number", verb, value)
			}
			if verb == "blur" && amount <= 0 {
				return nil, fmt.Errorf("verb %q needs a positive value", verb)
			}
			transforms = append(transforms, transform{verb: verb, amount: amount})

		case "resize":
			if !hasValue {
				return nil, fmt.Errorf("verb resize needs <w>:<h>")
			}
			wStr, hStr, ok := strings.Cut(value, ":")
			if !ok {
				return nil, fmt.Errorf("verb resize needs <w>:<h>, got %q", value)
			}
			w, wErr := strconv.Atoi(wStr)
			h, hErr := strconv.Atoi(hStr)
			if wErr != nil || hErr != nil || w <= 0 || h <= 0 || w > 4096 || h > 4096 {
				return nil, fmt.Errorf("verb resize: bad dimensions %q", value)
			}
			transforms = append(transforms, transform{verb: "resize", width: uint(w), height: uint(h)})

		default:
			return nil, fmt.Errorf("unknown verb %q", verb)
		}
	}
	if len(transforms) == 0 {
		return nil, fmt.Errorf("no verbs given")
	}
	return transforms, nil
}

// applyTransforms folds the transform list over the image in order.
func applyTransforms(img image.Image, transforms []transform) image.Image {
	for _, t := range transforms {
		switch t.verb {
		case "invert":
			img = mapPixels(img, func(r, g, b uint8) (uint8, uint8, uint8) {
				return 255 - r, 255 - g, 255 - b
			})
		case "greyscale":
			img = mapPixels(img, func(r, g, b uint8) (uint8, uint8, uint8) {
				y := uint8(math.Round(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)))
				return y, y, y
			})
		case "fliph":
			img = flipHorizontal(img)
		case "flipv":
			img = flipVertical(img)
		case "brighten":
			delta := t.amount
			img = mapPixels(img, func(r, g, b uint8) (uint8, uint8, uint8) {
				return clampU8(int(r) + delta), clampU8(int(g) + delta), clampU8(int(b) + delta)
			})
		case "contrast":
			factor := contrastFactor(t.amount)
			img = mapPixels(img, func(r, g, b uint8) (uint8, uint8, uint8) {
				return contrastChannel(r, factor), contrastChannel(g, factor), contrastChannel(b, factor)
			})
		case "blur":
			img = boxBlur(img, t.amount)
		case "resize":
			img = resize.Resize(t.width, t.height, img, resize.Lanczos3)
		}
	}
	return img
}

func mapPixels(img image.Image, fn func(r, g, b uint8) (uint8, uint8, uint8)) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.R, c.G, c.B = fn(c.R, c.G, c.B)
			out.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
	return out
}

func flipHorizontal(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(bounds.Max.X-1-x, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return out
}

func flipVertical(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x-bounds.Min.X, bounds.Max.Y-1-y, img.At(x, y))
		}
	}
	return out
}

func contrastFactor(amount int) float64 {
	c := float64(clampInt(amount, -100, 100))
	return (259 * (c + 255)) / (255 * (259 - c))
}

func contrastChannel(v uint8, factor float64) uint8 {
	return clampU8(int(math.Round(factor*(float64(v)-128) + 128)))
}

// boxBlur applies a square box blur with the given radius.
func boxBlur(img image.Image, radius int) *image.NRGBA {
	if radius > 16 {
		radius = 16
	}
	bounds := img.Bounds()
	src := mapPixels(img, func(r, g, b uint8) (uint8, uint8, uint8) { return r, g, b })
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	w, h := bounds.Dx(), bounds.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumR, sumG, sumB, sumA, count int
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					c := src.NRGBAAt(nx, ny)
					sumR += int(c.R)
					sumG += int(c.G)
					sumB += int(c.B)
					sumA += int(c.A)
					count++
				}
			}
			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(sumR / count),
				G: uint8(sumG / count),
				B: uint8(sumB / count),
				A: uint8(sumA / count),
			})
		}
	}
	return out
}

func clampU8(v int) uint8 {
	return uint8(clampInt(v, 0, 255))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ImageHandler handles /image, applying transforms to a replied-to photo.
type ImageHandler struct {
	Logger      botpkg.Logger
	RateLimiter *telegram.RateLimiter
	MaxBytes    int64

	retry *retryablehttp.Client
}

// NewImageHandler creates an image handler with a download client.
func NewImageHandler(timeout time.Duration, maxBytes int64, logger botpkg.Logger, rl *telegram.RateLimiter) *ImageHandler {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	return &ImageHandler{
		Logger:      logger,
		RateLimiter: rl,
		MaxBytes:    maxBytes,
		retry:       client,
	}
}

func (h *ImageHandler) Handle(ctx context.Context, b telegram.API, update *telego.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}
	message := update.Message

	replyTo := message.ReplyToMessage
	if replyTo == nil || len(replyTo.Photo) == 0 {
		return reply(ctx, h.RateLimiter, b, message, imageUsage)
	}

	transforms, err := parseTransforms(strings.Fields(commandArguments(message.Text)))
	if err != nil {
		return reply(ctx, h.RateLimiter, b, message, fmt.Sprintf("%s\n(%s)", imageUsage, err))
	}

	// Telegram orders photo sizes ascending, last one is the original.
	photo := replyTo.Photo[len(replyTo.Photo)-1]
	if h.MaxBytes > 0 && int64(photo.FileSize) > h.MaxBytes {
		return reply(ctx, h.RateLimiter, b, message, "That photo is too large to process")
	}

	img, err := h.download(ctx, b, photo.FileID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("image download failed", "chat_id", message.Chat.ID, "file_id", photo.FileID, "error", err)
		}
		return reply(ctx, h.RateLimiter, b, message, commandFailedText)
	}

	img = applyTransforms(img, transforms)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("encode transformed image: %w", err)
	}

	params := &telego.SendPhotoParams{
		ChatID: telego.ChatID{ID: message.Chat.ID},
		Photo:  telegoutil.File(telegoutil.NameReader(&buf, "transformed.jpg")),
		ReplyParameters: &telego.ReplyParameters{
			MessageID: message.MessageID,
		},
	}
	if _, err := telegram.SendPhotoWithRetry(ctx, h.RateLimiter, b, params); err != nil {
		return fmt.Errorf("send transformed image: %w", err)
	}
	return nil
}

func (h *ImageHandler) download(ctx context.Context, b telegram.API, fileID string) (image.Image, error) {
	info, err := b.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file info: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadURL(info.FilePath), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.retry.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if h.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, h.MaxBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	if img, err := jpeg.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := png.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image decode failed for file %s", fileID)
}
