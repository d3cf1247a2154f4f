// Package classifier labels photos of housing problems through a hosted
// image-classification endpoint.
package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

const UnknownLabel = "Unknown"

// Prediction is the top class returned for an image.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Client calls a Roboflow-style hosted classification model.
type Client struct {
	baseURL    string
	apiKey     string
	modelID    string
	httpClient *http.Client
	parsers    fastjson.ParserPool
	logger     *zap.SugaredLogger
}

// NewClient constructs the wrapper.
func NewClient(baseURL, apiKey, modelID string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		modelID:    strings.Trim(modelID, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Classify sends the raw image bytes and returns the best prediction.
func (c *Client) Classify(ctx context.Context, image []byte) (Prediction, error) {
	if len(image) == 0 {
		return Prediction{}, fmt.Errorf("empty image")
	}

	endpoint := c.baseURL + "/" + c.modelID + "?api_key=" + url.QueryEscape(c.apiKey)
	body := strings.NewReader(base64.StdEncoding.EncodeToString(image))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Prediction{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, fmt.Errorf("read classifier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("classifier status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	pred, err := c.parse(raw)
	if err != nil {
		return Prediction{}, err
	}
	c.logger.Debugw("image classified", "model", c.modelID, "label", pred.Label, "confidence", pred.Confidence, "took", time.Since(start))
	return pred, nil
}

// parse understands the single-label shape (predictions array), the
// multi-label shape (predictions object keyed by class) and the "top"
// shorthand.
func (c *Client) parse(raw []byte) (Prediction, error) {
	p := c.parsers.Get()
	defer c.parsers.Put(p)

	v, err := p.ParseBytes(raw)
	if err != nil {
		return Prediction{}, fmt.Errorf("parse classifier response: %w", err)
	}

	preds := v.Get("predictions")
	if preds != nil {
		switch preds.Type() {
		case fastjson.TypeArray:
			items, _ := preds.Array()
			if len(items) > 0 {
				label := string(items[0].GetStringBytes("class"))
				if label != "" {
					return Prediction{Label: label, Confidence: items[0].GetFloat64("confidence")}, nil
				}
			}
		case fastjson.TypeObject:
			best := Prediction{}
			obj, _ := preds.Object()
			obj.Visit(func(key []byte, item *fastjson.Value) {
				conf := item.GetFloat64("confidence")
				if best.Label == "" || conf > best.Confidence {
					best = Prediction{Label: string(key), Confidence: conf}
				}
			})
			if best.Label != "" {
				return best, nil
			}
		}
	}

	if top := string(v.GetStringBytes("top")); top != "" {
		return Prediction{Label: top, Confidence: v.GetFloat64("confidence")}, nil
	}
	return Prediction{Label: UnknownLabel}, nil
}
