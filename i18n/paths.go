// Package i18n guarda os dicionários do site (en/id) e os helpers de rota por
// idioma. O idioma padrão não leva prefixo na URL; os demais usam /<lang>/...
package i18n

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLang é o idioma servido sem prefixo.
const DefaultLang = "en"

// Languages mapeia código -> nome exibido no seletor de idioma.
var Languages = map[string]string{
	"en": "English",
	"id": "Bahasa Indonesia",
}

// IsSupported diz se lang é um dos idiomas com dicionário.
func IsSupported(lang string) bool {
	_, ok := Languages[lang]
	return ok
}

// Codes retorna os códigos suportados em ordem.
func Codes() []string {
	out := make([]string, 0, len(Languages))
	for code := range Languages {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// LanguageFromPath usa o primeiro segmento do caminho se ele for um idioma
// conhecido. Caso contrário, DefaultLang.
func LanguageFromPath(path string) string {
	rest := strings.TrimPrefix(path, "/")
	first, _, _ := strings.Cut(rest, "/")
	if IsSupported(first) {
		return first
	}
	return DefaultLang
}

// LocalizedPath reescreve path para lang: remove um prefixo de idioma já
// presente e prefixa lang quando ele não é o padrão.
//
//	LocalizedPath("/id/projects", "en") == "/projects"
//	LocalizedPath("/projects", "id")    == "/id/projects"
func LocalizedPath(path, lang string) string {
	segments := make([]string, 0, 4)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	if len(segments) > 0 && IsSupported(segments[0]) {
		segments = segments[1:]
	}
	if lang != DefaultLang {
		segments = append([]string{lang}, segments...)
	}

	return "/" + strings.Join(segments, "/")
}

// NormalizeLanguage converte uma tag BCP 47 (ex: "id-ID", "EN") para um dos
// idiomas suportados. Tags inválidas ou sem dicionário viram DefaultLang.
func NormalizeLanguage(tag string) string {
	t, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return DefaultLang
	}
	base, _ := t.Base()
	if code := base.String(); IsSupported(code) {
		return code
	}
	return DefaultLang
}
