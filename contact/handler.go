// Package contact implementa o endpoint do formulário de contato do portfólio:
// valida o corpo, confere o token do Turnstile e envia um e-mail pelo Resend.
//
// CORS, rate limit e recuperação de panic ficam em middlewares (ver NewRouter).
package contact

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"contact-gateway/captcha"
	"contact-gateway/httpx"
	"contact-gateway/mailer"
	"contact-gateway/middleware/ratelimit"
	"contact-gateway/middleware/ratelimit/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes limita o corpo aceito (mensagem de 5000 chars cabe com folga).
const DefaultMaxBodyBytes = 64 << 10

// Config são os endereços do e-mail enviado.
type Config struct {
	RecipientEmail string
	SenderEmail    string
	MaxBodyBytes   int64
}

type Handler struct {
	cfg      Config
	verifier captcha.Verifier
	sender   mailer.Sender
	stats    domain.StatsStore
	logger   *zap.Logger
	now      func() time.Time
}

type HandlerOption func(*Handler)

func WithStats(s domain.StatsStore) HandlerOption {
	return func(h *Handler) { h.stats = s }
}

func WithLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

func NewHandler(cfg Config, verifier captcha.Verifier, sender mailer.Sender, opts ...HandlerOption) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	h := &Handler{
		cfg:      cfg,
		verifier: verifier,
		sender:   sender,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP trata um POST já liberado pelo rate limit. Cada chamada externa é
// feita no máximo uma vez.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientIP := ratelimit.KeyFromContext(ctx)
	log := h.logger.With(
		zap.String("submission_id", uuid.NewString()),
		zap.String("client_ip", clientIP),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(ctx, w, clientIP, MsgInvalidBody)
			return
		}
		h.fault(ctx, w, log, clientIP, err)
		return
	}

	sub, err := DecodeSubmission(body)
	if err != nil {
		if rej, ok := IsReject(err); ok {
			h.reject(ctx, w, clientIP, rej.Message)
			return
		}
		h.fault(ctx, w, log, clientIP, err)
		return
	}

	if msg := Validate(sub); msg != "" {
		h.reject(ctx, w, clientIP, msg)
		return
	}

	res, err := h.verifier.Verify(ctx, sub.TurnstileToken, clientIP)
	if err != nil || !res.Success {
		log.Info("captcha verification failed",
			zap.Strings("error_codes", res.ErrorCodes),
			zap.Error(err))
		h.record(ctx, clientIP, domain.OutcomeCaptchaFailed)
		httpx.Error(w, http.StatusBadRequest, MsgCaptchaFailed)
		return
	}

	sent, err := h.sender.Send(ctx, BuildEmail(sub, h.cfg.SenderEmail, h.cfg.RecipientEmail))
	if err != nil {
		log.Error("email dispatch failed", zap.Error(err))
		h.record(ctx, clientIP, domain.OutcomeEmailFailed)
		httpx.Error(w, http.StatusInternalServerError, MsgSendFailed)
		return
	}

	log.Info("contact message sent", zap.String("email_id", sent.ID))
	h.record(ctx, clientIP, domain.OutcomeSent)
	httpx.JSON(w, http.StatusOK, successBody{Success: true, Message: MsgSent})
}

type successBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, clientIP, msg string) {
	h.record(ctx, clientIP, domain.OutcomeInvalid)
	httpx.Error(w, http.StatusBadRequest, msg)
}

func (h *Handler) fault(ctx context.Context, w http.ResponseWriter, log *zap.Logger, clientIP string, err error) {
	log.Error("error processing request", zap.Error(err))
	h.record(ctx, clientIP, domain.OutcomeError)
	httpx.Error(w, http.StatusInternalServerError, MsgUnexpected)
}

func (h *Handler) record(ctx context.Context, clientIP string, outcome domain.Outcome) {
	if h.stats == nil {
		return
	}
	if err := h.stats.Record(ctx, domain.StatsEvent{
		Key:     domain.Key(clientIP),
		Outcome: outcome,
		At:      h.now(),
	}); err != nil {
		h.logger.Warn("stats record failed", zap.String("outcome", string(outcome)), zap.Error(err))
	}
}
