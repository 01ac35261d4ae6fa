// Package vision wraps the Google Vision images:annotate endpoint used
// to read text off part labels photographed by the mobile client.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/skladapp/sklad-backend/pkg/config"
)

// Client calls the TEXT_DETECTION feature of the Vision REST API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string
}

// New builds a client from config. Returns nil when no API key is
// configured; callers treat a nil client as "OCR unavailable".
func New(cfg config.VisionConfig) *Client {
	if !cfg.Enabled() {
		return nil
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
	}
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// RecognizeText uploads the image at path and returns the full detected
// text block, or an empty string when the image contains none.
func (c *Client) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}

	payload := annotateRequest{
		Requests: []annotateEntry{{
			Image: annotateImage{Content: base64.StdEncoding.EncodeToString(raw)},
			Features: []annotateFeature{{
				Type:       "TEXT_DETECTION",
				MaxResults: 1,
			}},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling vision api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("vision api status %d: %s", resp.StatusCode, snippet)
	}

	var decoded annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decoding vision response: %w", err)
	}
	if len(decoded.Responses) == 0 {
		return "", nil
	}
	first := decoded.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("vision api: %s", first.Error.Message)
	}
	if len(first.TextAnnotations) == 0 {
		return "", nil
	}
	return first.TextAnnotations[0].Description, nil
}

func (c *Client) requestURL() string {
	return c.endpoint + "?key=" + url.QueryEscape(c.apiKey)
}
