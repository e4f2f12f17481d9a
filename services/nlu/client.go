package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"concierge/models"
	"concierge/utils"

	"go.uber.org/zap"
)

// HTTPProvider talks to the external NLU microservice.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *HTTPProvider) Resolve(ctx context.Context, req ResolveRequest) (*models.NLUResponse, error) {
	logger := utils.GetLogger()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal NLU request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build NLU request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		logger.Error("Failed to call NLU service", zap.Error(err))
		return nil, fmt.Errorf("failed to reach NLU service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("NLU service returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("NLU service error: status %d", resp.StatusCode)
	}

	var out models.NLUResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logger.Error("Failed to decode NLU service response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode NLU response: %w", err)
	}
	return &out, nil
}
