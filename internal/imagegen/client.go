// Package imagegen edits audit photos through the Gemini generateContent API.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash-image"
	defaultMime    = "image/png"
)

// ErrNoImage is returned when the model answers without an image part.
var ErrNoImage = errors.New("no image returned; ask for an image modification in the prompt")

type Client interface {
	EditImage(ctx context.Context, dataURI, prompt string) (string, error)
}

type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	InlineData *inlineData `json:"inlineData,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

var dataURIPattern = regexp.MustCompile(`^data:([a-zA-Z0-9]+/[a-zA-Z0-9\-.+]+).*,`)

// ParseDataURI splits a data URI into its mime type and base64 payload. A
// missing or unrecognised mime type defaults to image/png; input without a
// comma yields an empty payload.
func ParseDataURI(uri string) (mimeType, data string) {
	mimeType = defaultMime
	if m := dataURIPattern.FindStringSubmatch(uri); m != nil {
		mimeType = m[1]
	}
	if _, after, ok := strings.Cut(uri, ","); ok {
		data = after
		if i := strings.IndexByte(data, ','); i >= 0 {
			data = data[:i]
		}
	}
	return mimeType, data
}

// EditImage sends the image and prompt once and returns the first image part
// of the first candidate as a data URI.
func (c *HTTPClient) EditImage(ctx context.Context, dataURI, prompt string) (string, error) {
	mimeType, data := ParseDataURI(dataURI)
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{
		{InlineData: &inlineData{MimeType: mimeType, Data: data}},
		{Text: prompt},
	}}}})
	if err != nil {
		return "", err
	}

	path := "/v1beta/models/" + c.model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini POST %s: %d %s", path, resp.StatusCode, string(respBody))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", ErrNoImage
	}
	for _, p := range out.Candidates[0].Content.Parts {
		if p.InlineData != nil {
			return "data:" + p.InlineData.MimeType + ";base64," + p.InlineData.Data, nil
		}
	}
	return "", ErrNoImage
}
