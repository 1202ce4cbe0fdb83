package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rookgm/wellpay/internal/models"
)

const sendPath = "/v3/smtp/email"

// Client sends transactional template email through the provider HTTP API.
type Client struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	sender     string
	templateID int64
}

// New creates new mailer Client instance
func New(baseURL, apiKey, sender string, templateID int64) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    baseURL,
		apiKey:     apiKey,
		sender:     sender,
		templateID: templateID,
	}
}

type address struct {
	Email string `json:"email"`
}

type sendRequest struct {
	Sender     address                `json:"sender"`
	To         []address              `json:"to"`
	TemplateID int64                  `json:"templateId"`
	Params     map[string]interface{} `json:"params"`
}

// SendPaymentConfirmation sends the payment confirmation template to the
// payer with order id, payment id and amount in major units as template
// variables.
// 2xx — письмо принято провайдером.
// 4xx/5xx — отказ провайдера, текст ответа включается в ошибку.
func (c *Client) SendPaymentConfirmation(ctx context.Context, msg models.PaymentConfirmation) error {
	sendReq := sendRequest{
		Sender:     address{Email: c.sender},
		To:         []address{{Email: msg.Email}},
		TemplateID: c.templateID,
		Params: map[string]interface{}{
			"order_id":   msg.OrderID,
			"payment_id": msg.PaymentID,
			"amount":     msg.Amount,
		},
	}

	body, err := json.Marshal(sendReq)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email provider: status %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
