package contact

import (
	"fmt"

	"contact-gateway/mailer"
)

const emailHTML = `
<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Message:</strong></p>
<p style="white-space: pre-wrap;">%s</p>
`

// BuildEmail monta a mensagem para o dono do site. reply_to aponta para quem
// enviou, então responder no cliente de e-mail vai direto para essa pessoa.
func BuildEmail(s Submission, from, to string) mailer.Email {
	return mailer.Email{
		From:    from,
		To:      to,
		Subject: "Portfolio Contact: " + s.Name,
		ReplyTo: s.Email,
		HTML:    fmt.Sprintf(emailHTML, EscapeHTML(s.Name), EscapeHTML(s.Email), EscapeHTML(s.Message)),
	}
}
