package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Factory builds a named transform from rule options.
type Factory func(opts map[string]any) (Transform, error)

var builtins = map[string]Factory{
	"comment":    commentLoader,
	"replace":    replaceLoader,
	"strict":     strictLoader,
	"json":       jsonLoader,
	"typescript": esbuildLoader("typescript", api.LoaderTS),
	"tsx":        esbuildLoader("tsx", api.LoaderTSX),
	"jsx":        esbuildLoader("jsx", api.LoaderJSX),
}

// Lookup builds the built-in loader called name.
func Lookup(name string, opts map[string]any) (Transform, error) {
	factory, ok := builtins[name]
	if !ok {
		return Transform{}, fmt.Errorf("unknown loader %q (available: %s)", name, strings.Join(Builtins(), ", "))
	}
	return factory(opts)
}

// Builtins lists built-in loader names, sorted.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stringOpt(opts map[string]any, key, def string) (string, error) {
	raw, ok := opts[key]
	if !ok || raw == nil {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("option %q must be a string, got %T", key, raw)
	}
	return s, nil
}

// commentLoader appends a line comment.
func commentLoader(opts map[string]any) (Transform, error) {
	text, err := stringOpt(opts, "text", "bale")
	if err != nil {
		return Transform{}, err
	}
	return Transform{
		Name: "comment:" + text,
		Fn: func(source string) (string, error) {
			return source + "\n//" + text, nil
		},
	}, nil
}

// replaceLoader substitutes literal text, e.g. process.env.NODE_ENV.
func replaceLoader(opts map[string]any) (Transform, error) {
	raw, ok := opts["values"]
	if !ok {
		return Transform{}, errors.New(`replace loader needs a "values" table`)
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return Transform{}, fmt.Errorf(`option "values" must be a table, got %T`, raw)
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	// longest first so "a.b.c" wins over "a.b"
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	name := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := table[k].(string)
		if !ok {
			return Transform{}, fmt.Errorf("replacement for %q must be a string, got %T", k, table[k])
		}
		pairs = append(pairs, k, v)
		name = append(name, k+"="+v)
	}
	replacer := strings.NewReplacer(pairs...)
	return Transform{
		Name: "replace:" + strings.Join(name, ","),
		Fn: func(source string) (string, error) {
			return replacer.Replace(source), nil
		},
	}, nil
}

func strictLoader(map[string]any) (Transform, error) {
	return Transform{
		Name: "strict",
		Fn: func(source string) (string, error) {
			return "\"use strict\";\n" + source, nil
		},
	}, nil
}

// jsonLoader turns a JSON document into a CommonJS module.
func jsonLoader(map[string]any) (Transform, error) {
	return Transform{
		Name: "json",
		Fn: func(source string) (string, error) {
			trimmed := strings.TrimSpace(source)
			if !json.Valid([]byte(trimmed)) {
				return "", errors.New("invalid JSON")
			}
			return "module.exports = " + trimmed + ";", nil
		},
	}, nil
}

// esbuildLoader compiles TypeScript/JSX down to CommonJS, which keeps every
// import as a require("...") call with a literal specifier.
func esbuildLoader(name string, kind api.Loader) Factory {
	return func(opts map[string]any) (Transform, error) {
		jsxFactory, err := stringOpt(opts, "jsxFactory", "")
		if err != nil {
			return Transform{}, err
		}
		return Transform{
			Name: name + ":" + jsxFactory,
			Fn: func(source string) (string, error) {
				result := api.Transform(source, api.TransformOptions{
					Loader:     kind,
					Format:     api.FormatCommonJS,
					JSXFactory: jsxFactory,
				})
				if len(result.Errors) > 0 {
					return "", esbuildError(result.Errors)
				}
				return string(result.Code), nil
			},
		}, nil
	}
}

func esbuildError(msgs []api.Message) error {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Location != nil {
			parts = append(parts, fmt.Sprintf("%d:%d: %s", msg.Location.Line, msg.Location.Column, msg.Text))
			continue
		}
		parts = append(parts, msg.Text)
	}
	return errors.New(strings.Join(parts, "; "))
}
