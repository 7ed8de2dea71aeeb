package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

var defaultBundle = mustLoadEmbedded()

// Bundle guarda um dicionário aninhado por idioma.
type Bundle struct {
	dicts map[string]map[string]any
}

// Default retorna o bundle embutido no binário.
func Default() *Bundle {
	return defaultBundle
}

func mustLoadEmbedded() *Bundle {
	b, err := LoadFromFS(embeddedLocales)
	if err != nil {
		panic(err)
	}
	return b
}

// LoadFromFS carrega locales/<lang>.json do filesystem. O idioma padrão é
// obrigatório porque é o fallback de todas as consultas.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	b := &Bundle{dicts: make(map[string]map[string]any, len(paths))}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", p, err)
		}
		var dict map[string]any
		if err := json.Unmarshal(data, &dict); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", p, err)
		}
		lang := strings.TrimSuffix(path.Base(p), path.Ext(p))
		b.dicts[lang] = dict
	}

	if _, ok := b.dicts[DefaultLang]; !ok {
		return nil, fmt.Errorf("default locale %s is not defined", DefaultLang)
	}
	return b, nil
}

// HasLanguage diz se existe dicionário carregado para lang.
func (b *Bundle) HasLanguage(lang string) bool {
	_, ok := b.dicts[lang]
	return ok
}

// Lookup busca a chave pontilhada (ex: "nav.projects") em lang e, se faltar
// algum segmento, no idioma padrão. ok=false quando nenhum dos dois tem a
// chave; nesse caso o valor retornado é a própria chave.
func (b *Bundle) Lookup(lang, key string) (string, bool) {
	if v, ok := resolve(b.dicts[lang], key); ok {
		return v, true
	}
	if v, ok := resolve(b.dicts[DefaultLang], key); ok {
		return v, true
	}
	return key, false
}

// Strings busca uma lista de textos (ex: "about.paragraphs") com o mesmo
// fallback de Lookup. ok=false quando nenhum idioma tem a lista; nesse caso
// o retorno é []string{key}.
func (b *Bundle) Strings(lang, key string) ([]string, bool) {
	if v, ok := stringList(walk(b.dicts[lang], key)); ok {
		return v, true
	}
	if v, ok := stringList(walk(b.dicts[DefaultLang], key)); ok {
		return v, true
	}
	return []string{key}, false
}

// T devolve uma função de tradução presa a lang.
func (b *Bundle) T(lang string) func(key string) string {
	return func(key string) string {
		v, _ := b.Lookup(lang, key)
		return v
	}
}

// Keys lista as chaves folha de lang, em ordem.
func (b *Bundle) Keys(lang string) []string {
	var out []string
	collectKeys(b.dicts[lang], "", &out)
	sort.Strings(out)
	return out
}

// resolve só aceita folhas string; objeto ou lista no fim do caminho conta como ausente.
func resolve(dict map[string]any, key string) (string, bool) {
	s, ok := walk(dict, key).(string)
	return s, ok
}

// walk desce pelo caminho pontilhado. Segmentos numéricos indexam listas
// ("about.paragraphs.0"). Retorna nil se algum segmento faltar.
func walk(dict map[string]any, key string) any {
	if dict == nil || key == "" {
		return nil
	}
	var cur any = dict
	for _, seg := range strings.Split(key, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

// stringList só aceita listas em que todo item é string.
func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func collectKeys(node map[string]any, prefix string, out *[]string) {
	for k, v := range node {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		switch child := v.(type) {
		case map[string]any:
			collectKeys(child, full, out)
		case []any:
			for i, item := range child {
				if _, ok := item.(string); ok {
					*out = append(*out, full+"."+strconv.Itoa(i))
				}
			}
		case string:
			*out = append(*out, full)
		}
	}
}
