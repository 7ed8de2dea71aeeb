package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength    = 100
	MaxMessageLength = 5000
)

// Mensagens devolvidas ao cliente (seguras para exibir).
const (
	MsgNameRequired    = "Name is required"
	MsgNameTooLong     = "Name is too long (max 100 characters)"
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Invalid email format"
	MsgMessageRequired = "Message is required"
	MsgMessageTooLong  = "Message is too long (max 5000 characters)"
	MsgTokenRequired   = "Captcha token is required"
	MsgInvalidBody     = "Invalid request body"

	MsgMethodNotAllowed = "Method not allowed"
	MsgCaptchaFailed    = "Captcha verification failed. Please try again."
	MsgSendFailed       = "Failed to send message. Please try again later."
	MsgUnexpected       = "An unexpected error occurred."
	MsgSent             = "Message sent successfully!"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission é o corpo JSON do formulário de contato.
type Submission struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Message        string `json:"message"`
	TurnstileToken string `json:"turnstileToken"`
}

// RejectError é um corpo bem-formado mas inaceitável (400).
type RejectError struct {
	Message string
}

func (e *RejectError) Error() string { return e.Message }

var knownFields = map[string]func(*Submission) *string{
	"name":           func(s *Submission) *string { return &s.Name },
	"email":          func(s *Submission) *string { return &s.Email },
	"message":        func(s *Submission) *string { return &s.Message },
	"turnstileToken": func(s *Submission) *string { return &s.TurnstileToken },
}

// DecodeSubmission lê o corpo e falha fechado:
//
//   - JSON inválido: erro comum (o handler responde 500);
//   - campo desconhecido: *RejectError (400);
//   - campo conhecido com tipo errado ou null: fica vazio e Validate acusa "required";
//   - corpo null: erro comum (500), não há objeto de onde ler campos;
//   - outro corpo que não é objeto: tratado como objeto vazio.
func DecodeSubmission(body []byte) (Submission, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Submission{}, fmt.Errorf("decode submission: %w", err)
	}

	if raw == nil {
		return Submission{}, errors.New("decode submission: body is null")
	}

	var s Submission
	obj, ok := raw.(map[string]any)
	if !ok {
		return s, nil
	}

	for key, value := range obj {
		field, known := knownFields[key]
		if !known {
			return Submission{}, &RejectError{Message: MsgInvalidBody}
		}
		if str, isString := value.(string); isString {
			*field(&s) = str
		}
	}
	return s, nil
}

// Validate aplica as regras em ordem e devolve a primeira violação ("" se ok).
func Validate(s Submission) string {
	if strings.TrimSpace(s.Name) == "" {
		return MsgNameRequired
	}
	if utf8.RuneCountInString(s.Name) > MaxNameLength {
		return MsgNameTooLong
	}

	if s.Email == "" {
		return MsgEmailRequired
	}
	if !emailPattern.MatchString(s.Email) {
		return MsgEmailInvalid
	}

	if strings.TrimSpace(s.Message) == "" {
		return MsgMessageRequired
	}
	if utf8.RuneCountInString(s.Message) > MaxMessageLength {
		return MsgMessageTooLong
	}

	if s.TurnstileToken == "" {
		return MsgTokenRequired
	}
	return ""
}

// IsReject informa se err é um RejectError.
func IsReject(err error) (*RejectError, bool) {
	var rej *RejectError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
