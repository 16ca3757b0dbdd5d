package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/ehr/radiologia/internal/platform/apperr"
)

// DefaultTimeout bounds a classifier call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const maxResponseBytes = 1 << 20

// Client calls the classifier over HTTP: the image is POSTed as the request
// body and the service answers {"label": 0|1, "score": float}.
type Client struct {
	url       string
	http      *http.Client
	timeout   time.Duration
	inputSize int
	logger    zerolog.Logger
}

type Option func(*Client)

// WithTimeout bounds every Predict call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithInputSize resizes images to size x size PNG before sending them.
// Zero sends the stored bytes unchanged.
func WithInputSize(size int) Option {
	return func(c *Client) { c.inputSize = size }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:     url,
		http:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type classifierResponse struct {
	Label *int     `json:"label"`
	Score *float64 `json:"score"`
}

func (c *Client) Predict(ctx context.Context, image []byte) (Result, error) {
	body := image
	if c.inputSize > 0 {
		resized, err := Preprocess(image, c.inputSize)
		if err != nil {
			return Result{}, err
		}
		body = resized
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, unavailable("build request", err)
	}
	req.Header.Set("Content-Type", mimetype.Detect(body).String())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", c.url).Msg("classifier unreachable")
		return Result{}, unavailable("call classifier", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, unavailable("read classifier response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("url", c.url).Msg("classifier returned error status")
		return Result{}, unavailable("call classifier", fmt.Errorf("status %d", resp.StatusCode))
	}

	var out classifierResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, unavailable("decode classifier response", err)
	}
	if out.Label == nil || out.Score == nil {
		return Result{}, unavailable("decode classifier response", errors.New("label and score are required"))
	}

	res, err := NewResult(*out.Label, *out.Score)
	if err != nil {
		return Result{}, err
	}
	c.logger.Debug().
		Int("label", res.Label).
		Float64("score", res.Score).
		Dur("latency", time.Since(start)).
		Msg("prediction")
	return res, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, apperr.ErrPredictionUnavailable)
}

// Preprocess decodes image and returns it resized to size x size as PNG.
func Preprocess(image []byte, size int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(image))
	if err != nil {
		return nil, apperr.Validation("decode image: %v", err)
	}
	img = imaging.Resize(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
