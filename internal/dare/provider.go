package dare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TextProvider produces dare text for a round loser. Implementations may
// fail; callers fall back to the local pool and never surface the error
// to players.
type TextProvider interface {
	Generate(ctx context.Context, loserName string, categories []string) (string, error)
}

// HTTPProvider calls a Gemini-style generation endpoint
type HTTPProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPProvider creates a provider against the given endpoint. An empty
// apiKey disables remote calls so Generate fails fast into the fallback.
func NewHTTPProvider(endpoint, apiKey string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Generate requests a single dare line for loserName. No retries: any
// failure is returned immediately so the caller can pick from the local
// pool instead.
func (p *HTTPProvider) Generate(ctx context.Context, loserName string, categories []string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("provider disabled: no api key")
	}

	prompt := buildDarePrompt(loserName, categories)
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", p.endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var genResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", err
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from provider")
	}

	text := strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("blank dare text from provider")
	}
	return text, nil
}

func buildDarePrompt(loserName string, categories []string) string {
	cats := "anything goes"
	if len(categories) > 0 {
		cats = strings.Join(categories, ", ")
	}
	return fmt.Sprintf(`You are the dare master of a party game. Write ONE short, funny,
safe-for-work dare for a player named %s. Themes the room picked: %s.
Reply with the dare text only, no quotes, no preamble, under 140 characters.`,
		loserName, cats)
}
