package notification

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

// WebhookNotifier posts reminders to an external delivery service. When
// no webhook is configured the reminder is logged instead, so a bare
// deployment still surfaces due reminders.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) SendBookingReminder(ctx context.Context, payload models.ReminderPayload) error {
	logger := utils.GetLogger()

	if n.URL == "" {
		logger.Info("Booking reminder due",
			zap.String("user_id", payload.UserID),
			zap.String("booking_code", payload.BookingCode),
			zap.String("date", payload.Date),
			zap.String("time", payload.Time))
		return nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewBuffer(b))
	if err != nil {
		return fmt.Errorf("failed to build reminder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver reminder: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reminder webhook error: status %d", resp.StatusCode)
	}
	return nil
}
