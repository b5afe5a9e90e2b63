package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/formflow/backend/pkg/circuitbreaker"
	"github.com/sony/gobreaker"
)

const resendBaseURL = "https://api.resend.com"

// ResendTransport delivers mail through the Resend HTTP API.
type ResendTransport struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

func NewResendTransport(apiKey string) *ResendTransport {
	return &ResendTransport{
		apiKey:  apiKey,
		baseURL: resendBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cb: circuitbreaker.New("resend-api"),
	}
}

func (t *ResendTransport) Kind() TransportKind {
	return TransportResend
}

// Verify lists the account's domains, a cheap authenticated call that proves
// the API key is accepted before any send is attempted.
func (t *ResendTransport) Verify(ctx context.Context) error {
	_, err := t.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+"/domains", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+t.apiKey)

		resp, err := t.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("resend verification failed with status %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}

type resendSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendSendResponse struct {
	ID string `json:"id"`
}

func (t *ResendTransport) Send(ctx context.Context, msg Message) (string, error) {
	result, err := t.cb.Execute(func() (interface{}, error) {
		body, err := json.Marshal(resendSendRequest{
			From:    msg.From,
			To:      []string{msg.To},
			Subject: msg.Subject,
			HTML:    msg.HTML,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal send request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/emails", bytes.NewBuffer(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("resend send failed with status %d: %s", resp.StatusCode, detail)
		}

		var sendResp resendSendResponse
		if err := json.NewDecoder(resp.Body).Decode(&sendResp); err != nil {
			return nil, fmt.Errorf("failed to decode send response: %w", err)
		}
		return sendResp.ID, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
