package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"contact-gateway/captcha"
	"contact-gateway/httpx"
	"contact-gateway/mailer"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	failToken    = "fail"
	bounceDomain = "@bounce.test"
)

// outbox guarda os e-mails aceitos, para inspeção em GET /emails.
type outbox struct {
	mu     sync.Mutex
	emails []storedEmail
}

type storedEmail struct {
	ID string `json:"id"`
	mailer.Email
	Authorization string    `json:"-"`
	ReceivedAt    time.Time `json:"received_at"`
}

func newOutbox() *outbox { return &outbox{} }

func (o *outbox) add(e storedEmail) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emails = append(o.emails, e)
}

func (o *outbox) list() []storedEmail {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]storedEmail, len(o.emails))
	copy(out, o.emails)
	return out
}

func newRouter(box *outbox, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Post("/turnstile/v0/siteverify", siteverify(logger))
	r.Post("/emails", sendEmail(box, logger))
	r.Get("/emails", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, box.list())
	})
	return r
}

func siteverify(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			httpx.JSON(w, http.StatusBadRequest, captcha.Result{ErrorCodes: []string{"bad-request"}})
			return
		}
		token := r.PostForm.Get("response")
		logger.Info("siteverify",
			zap.String("token", token),
			zap.String("remoteip", r.PostForm.Get("remoteip")))

		switch {
		case r.PostForm.Get("secret") == "":
			httpx.JSON(w, http.StatusOK, captcha.Result{ErrorCodes: []string{"missing-input-secret"}})
		case token == "" || token == failToken:
			httpx.JSON(w, http.StatusOK, captcha.Result{ErrorCodes: []string{"invalid-input-response"}})
		default:
			httpx.JSON(w, http.StatusOK, captcha.Result{
				Success:     true,
				ChallengeTS: time.Now().UTC().Format(time.RFC3339),
				Hostname:    "localhost",
			})
		}
	}
}

func sendEmail(box *outbox, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") == "" {
			httpx.JSON(w, http.StatusUnauthorized, mailer.APIError{
				StatusCode: http.StatusUnauthorized, Name: "missing_api_key", Message: "Missing API key in the authorization header",
			})
			return
		}

		var email mailer.Email
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&email); err != nil {
			httpx.JSON(w, http.StatusUnprocessableEntity, mailer.APIError{
				StatusCode: http.StatusUnprocessableEntity, Name: "validation_error", Message: "Invalid JSON body",
			})
			return
		}
		if email.From == "" || email.To == "" || email.Subject == "" {
			httpx.JSON(w, http.StatusUnprocessableEntity, mailer.APIError{
				StatusCode: http.StatusUnprocessableEntity, Name: "missing_required_field", Message: "from, to and subject are required",
			})
			return
		}
		if strings.HasSuffix(email.To, bounceDomain) {
			httpx.JSON(w, http.StatusUnprocessableEntity, mailer.APIError{
				StatusCode: http.StatusUnprocessableEntity, Name: "validation_error", Message: "recipient rejected",
			})
			return
		}

		stored := storedEmail{ID: uuid.NewString(), Email: email, Authorization: auth, ReceivedAt: time.Now().UTC()}
		box.add(stored)
		logger.Info("email accepted",
			zap.String("id", stored.ID),
			zap.String("to", email.To),
			zap.String("reply_to", email.ReplyTo),
			zap.String("subject", email.Subject))

		httpx.JSON(w, http.StatusOK, mailer.SendResult{ID: stored.ID})
	}
}
