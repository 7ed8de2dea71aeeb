// Package mailer envia e-mails transacionais pela API do Resend.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint = "https://api.resend.com/emails"
	// DefaultRPS é o limite padrão de uma conta Resend (2 req/s).
	DefaultRPS = 2
)

// Email é o corpo do POST /emails.
type Email struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	ReplyTo string `json:"reply_to,omitempty"`
	HTML    string `json:"html"`
}

type SendResult struct {
	ID string `json:"id"`
}

// APIError é a resposta não-2xx do Resend. Só deve ir para o log, nunca para o cliente.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("resend: status %d: %s: %s", e.StatusCode, e.Name, e.Message)
}

// Sender é o contrato usado pelo handler de contato.
type Sender interface {
	Send(ctx context.Context, email Email) (SendResult, error)
}

type Resend struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

type Option func(*Resend)

func WithEndpoint(u string) Option {
	return func(r *Resend) { r.endpoint = u }
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *Resend) { r.client = c }
}

// WithRate limita as chamadas de saída; rps <= 0 desliga o limite.
func WithRate(rps float64, burst int) Option {
	return func(r *Resend) {
		if rps <= 0 {
			r.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewResend(apiKey string, opts ...Option) *Resend {
	r := &Resend{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(DefaultRPS, DefaultRPS),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Send faz uma única tentativa. Sem retry: um timeout pode ter entregue o
// e-mail e repetir duplicaria a mensagem.
func (r *Resend) Send(ctx context.Context, email Email) (SendResult, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return SendResult{}, fmt.Errorf("resend rate wait: %w", err)
		}
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return SendResult{}, fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return SendResult{}, fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	accepted := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if err != nil && !accepted {
		return SendResult{}, fmt.Errorf("read resend response (status %d): %w", resp.StatusCode, err)
	}

	if !accepted {
		apiErr := &APIError{}
		if jerr := json.Unmarshal(body, apiErr); jerr != nil || apiErr.Message == "" {
			apiErr.Message = string(body)
		}
		apiErr.StatusCode = resp.StatusCode
		return SendResult{}, apiErr
	}

	var res SendResult
	// 2xx com corpo ilegível ou sem JSON válido ainda conta como enviado
	_ = json.Unmarshal(body, &res)
	return res, nil
}
