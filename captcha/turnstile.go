// Package captcha verifica tokens do Cloudflare Turnstile.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultSiteverifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Result é a resposta do siteverify.
type Result struct {
	Success     bool     `json:"success"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	Action      string   `json:"action,omitempty"`
}

// Verifier é o contrato usado pelo handler de contato.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (Result, error)
}

type Turnstile struct {
	secret   string
	endpoint string
	client   *http.Client
}

type Option func(*Turnstile)

func WithEndpoint(u string) Option {
	return func(t *Turnstile) { t.endpoint = u }
}

func WithHTTPClient(c *http.Client) Option {
	return func(t *Turnstile) { t.client = c }
}

func NewTurnstile(secret string, opts ...Option) *Turnstile {
	t := &Turnstile{
		secret:   secret,
		endpoint: DefaultSiteverifyURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Verify envia secret/response/remoteip e devolve o resultado do siteverify.
// Um erro significa que não foi possível obter uma resposta válida; quem chama
// trata erro e success=false da mesma forma (rejeita).
func (t *Turnstile) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	form := url.Values{}
	form.Set("secret", t.secret)
	form.Set("response", token)
	if remoteIP != "" && remoteIP != "unknown" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	var res Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode siteverify response (status %d): %w", resp.StatusCode, err)
	}
	return res, nil
}
