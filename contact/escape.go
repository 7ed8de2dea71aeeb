package contact

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML troca & < > " ' pelas entidades correspondentes.
// Todo campo enviado pelo usuário passa por aqui antes de entrar no HTML do e-mail.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}
