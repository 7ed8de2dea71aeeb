// Command i18n consulta os dicionários do site pela linha de comando.
//
//	i18n -lang id nav.projects contact.title
//	i18n -lang id -path /projects
//	i18n -lang id -missing
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"contact-gateway/i18n"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "i18n: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("i18n", flag.ContinueOnError)
	fs.SetOutput(out)
	lang := fs.String("lang", i18n.DefaultLang, "language tag (en, id, id-ID...)")
	path := fs.String("path", "", "print the localized form of this path")
	missing := fs.Bool("missing", false, "list keys of the default language missing in -lang")
	if err := fs.Parse(args); err != nil {
		return err
	}

	code := i18n.NormalizeLanguage(*lang)
	bundle := i18n.Default()

	switch {
	case *path != "":
		fmt.Fprintln(out, i18n.LocalizedPath(*path, code))
		return nil
	case *missing:
		have := make(map[string]struct{})
		for _, k := range bundle.Keys(code) {
			have[k] = struct{}{}
		}
		for _, k := range bundle.Keys(i18n.DefaultLang) {
			if _, ok := have[k]; !ok {
				fmt.Fprintln(out, k)
			}
		}
		return nil
	}

	if fs.NArg() == 0 {
		return fmt.Errorf("no keys given")
	}
	t := bundle.T(code)
	for _, key := range fs.Args() {
		fmt.Fprintf(out, "%s\t%s\n", key, t(key))
	}
	return nil
}
