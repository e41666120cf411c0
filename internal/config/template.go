package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// Scaffold returns a starter bale.toml for `bale init`.
func Scaffold(entry string) ([]byte, error) {
	f := scaffoldFile{
		Entry: map[string]string{DefaultEntryName: entry},
		Output: OutputConfig{
			Path:     "dist",
			Filename: "[name].js",
		},
		Resolve: ResolveConfig{Extensions: []string{".js", ".json"}},
		Module: scaffoldModule{Rules: []scaffoldRule{
			{Test: `\.json$`, Use: []string{"json"}},
		}},
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// The File type holds interface fields; the encoder wants concrete ones.
type scaffoldFile struct {
	Entry   map[string]string `toml:"entry"`
	Output  OutputConfig      `toml:"output"`
	Resolve ResolveConfig     `toml:"resolve"`
	Module  scaffoldModule    `toml:"module"`
}

type scaffoldModule struct {
	Rules []scaffoldRule `toml:"rules"`
}

type scaffoldRule struct {
	Test string   `toml:"test"`
	Use  []string `toml:"use"`
}
