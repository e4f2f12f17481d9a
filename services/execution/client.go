package execution

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

// HTTPBackend forwards actions to the execution microservice.
type HTTPBackend struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type dispatchRequest struct {
	Action  string                 `json:"action"`
	Facts   *models.OutcomeFacts   `json:"facts,omitempty"`
	Booking *models.BookingPayload `json:"booking,omitempty"`
}

func (b *HTTPBackend) Dispatch(ctx context.Context, action string, facts *models.OutcomeFacts, booking *models.BookingPayload) (*DispatchResult, error) {
	logger := utils.GetLogger()

	payload, err := json.Marshal(dispatchRequest{Action: action, Facts: facts, Booking: booking})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dispatch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build dispatch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.Client.Do(httpReq)
	if err != nil {
		logger.Error("Failed to call execution service", zap.String("action", action), zap.Error(err))
		return nil, fmt.Errorf("failed to reach execution service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("Execution service returned non-OK status",
			zap.String("action", action), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("execution service error: status %d", resp.StatusCode)
	}

	var out DispatchResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logger.Error("Failed to decode execution service response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode dispatch response: %w", err)
	}
	return &out, nil
}
