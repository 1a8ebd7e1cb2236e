package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuthGenerator talks to a generically configured JSON chat-completion
// endpoint authenticated via OAuth2 client-credentials. The concrete wire
// protocol of any specific hosted model vendor is out of scope; this
// adapter assumes an endpoint accepting {"messages":[...],"temperature":f}
// and returning {"content": "..."}.
type OAuthGenerator struct {
	endpoint   string
	httpClient *http.Client
}

// NewOAuthGenerator constructs a generator that authenticates with the
// given OAuth2 client-credentials config before calling endpoint.
func NewOAuthGenerator(ctx context.Context, endpoint string, cfg clientcredentials.Config) *OAuthGenerator {
	return &OAuthGenerator{
		endpoint:   endpoint,
		httpClient: oauth2.NewClient(ctx, cfg.TokenSource(ctx)),
	}
}

type oauthChatRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type oauthChatResponse struct {
	Content string `json:"content"`
}

func (g *OAuthGenerator) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	body, err := json.Marshal(oauthChatRequest{Messages: messages, Temperature: temperature})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, raw)
	}

	var out oauthChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Content, nil
}
