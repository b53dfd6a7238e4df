package flowise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

// Client calls a Flowise chatflow for answer generation. Retrieved memory
// contexts ride along in the prediction variables so the flow can ground
// its answer.
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	chatflowID string
	httpClient *http.Client
}

func NewFromEnv(log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("flowise: logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("FLOWISE_API_URL")), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("flowise: missing FLOWISE_API_URL")
	}
	chatflowID := strings.TrimSpace(os.Getenv("FLOWISE_CHATFLOW_ID"))
	if chatflowID == "" {
		return nil, fmt.Errorf("flowise: missing FLOWISE_CHATFLOW_ID")
	}

	timeoutSec := 60
	if v := strings.TrimSpace(os.Getenv("FLOWISE_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &Client{
		log:        log.With("client", "Flowise"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(os.Getenv("FLOWISE_API_KEY")),
		chatflowID: chatflowID,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

// PredictionVars carries the per-request identities and retrieved contexts
// handed to the chatflow.
type PredictionVars struct {
	UserID         string `json:"userId,omitempty"`
	SessionID      string `json:"sessionId,omitempty"`
	CompanyID      string `json:"companyId,omitempty"`
	UserContext    string `json:"userContext,omitempty"`
	SessionContext string `json:"sessionContext,omitempty"`
	CompanyContext string `json:"companyContext,omitempty"`
}

type predictionRequest struct {
	Question       string `json:"question"`
	OverrideConfig struct {
		SessionID string         `json:"sessionId,omitempty"`
		Vars      PredictionVars `json:"vars"`
	} `json:"overrideConfig"`
}

type predictionResponse struct {
	Text string `json:"text"`
}

// Predict sends the question through the configured chatflow and returns
// the generated answer text.
func (c *Client) Predict(ctx context.Context, question string, vars PredictionVars) (string, error) {
	req := predictionRequest{Question: question}
	req.OverrideConfig.SessionID = vars.SessionID
	req.OverrideConfig.Vars = vars

	raw, err := c.post(ctx, "/api/v1/prediction/"+c.chatflowID, req)
	if err != nil {
		return "", fmt.Errorf("%w: flowise predict: %v", apperr.ErrProviderUnavailable, err)
	}

	var resp predictionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: flowise predict: malformed response: %v", apperr.ErrProviderUnavailable, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("%w: flowise predict: empty answer", apperr.ErrProviderUnavailable)
	}
	return resp.Text, nil
}

// Health checks reachability of the Flowise instance.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/chatflows", nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: flowise health: %v", apperr.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: flowise health: http %d", apperr.ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
