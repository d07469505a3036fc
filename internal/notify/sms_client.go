package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"metervoice/internal/config"
)

// smsRequest is the gateway's send payload.
type smsRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
}

// smsResponse is the gateway's send result.
type smsResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SMSClient calls the outbound SMS gateway. The gateway is the only
// networked dependency with unbounded latency risk, so the client carries
// a bounded timeout and limited retry.
type SMSClient struct {
	httpClient *resty.Client
	sender     string
	logger     *zap.Logger
}

func NewSMSClient(cfg config.SMSConfig, logger *zap.Logger) *SMSClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.APIKey)

	return &SMSClient{
		httpClient: client,
		sender:     cfg.Sender,
		logger:     logger,
	}
}

var _ Notifier = (*SMSClient)(nil)

func (c *SMSClient) Notify(ctx context.Context, phone, message string) DeliveryResult {
	if phone == "" {
		return Failed("no phone number")
	}

	var result smsResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(smsRequest{To: phone, From: c.sender, Text: message}).
		SetResult(&result).
		Post("/api/v1/sms")

	if err != nil {
		c.logger.Warn("SMS gateway call failed",
			zap.String("phone", phone),
			zap.Error(err),
		)
		return Failed(err.Error())
	}
	if resp.IsError() {
		c.logger.Warn("SMS gateway returned error status",
			zap.String("phone", phone),
			zap.Int("status_code", resp.StatusCode()),
		)
		return Failed(fmt.Sprintf("gateway status %d", resp.StatusCode()))
	}
	if !result.Success {
		c.logger.Warn("SMS gateway rejected message",
			zap.String("phone", phone),
			zap.String("gateway_error", result.Error),
		)
		return Failed(result.Error)
	}

	c.logger.Info("SMS delivered to operator", zap.String("phone", phone))
	return Delivered()
}
