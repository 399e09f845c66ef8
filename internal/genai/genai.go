// Package genai calls the Google Generative Language API to produce bio
// suggestions. It is an assistive feature only: nothing transactional
// depends on it, and a failure surfaces as a plain request error.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client invokes the generateContent endpoint with a single prompt string
// and returns the plain text of the first candidate.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given API key and model name
// (e.g. "gemini-2.0-flash").
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a local
// httptest server.
func NewClientWithBaseURL(apiKey, model, baseURL string) *Client {
	c := NewClient(apiKey, model)
	c.baseURL = baseURL
	return c
}

// request/response mirror the generateContent wire format; only the fields
// we use are declared.
type request struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText sends the prompt and returns the generated text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(request{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("genai: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: calling generateContent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genai: generateContent returned status %d", resp.StatusCode)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("genai: decoding response: %w", err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("genai: response contained no candidates")
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}

// BioPrompt wraps the user's draft bio in the instruction we send to the
// model.
func BioPrompt(bio string) string {
	return fmt.Sprintf(
		"Rewrite the following link-in-bio profile description so it is friendly, "+
			"concise, and under 150 characters. Reply with the rewritten text only, "+
			"no quotes and no explanations.\n\nBio: %s", bio)
}
