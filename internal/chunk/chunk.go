// Package chunk assembles one bootable bundle per entry out of a finished
// module graph.
package chunk

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"bale/internal/graph"
	"bale/internal/jsast"
	runtimeembed "bale/runtime"
)

// Chunk is the rendered bundle of one entry.
type Chunk struct {
	Name    string
	EntryID string
	// ModuleIDs starts with EntryID and follows the graph's chunk order.
	ModuleIDs []string
	Code      []byte
}

// Options tune the rendered output.
type Options struct {
	// Banner is prepended as line comments, one per line.
	Banner string
}

type renderModule struct {
	ID     string
	Source string
}

type renderData struct {
	Banner  []string
	EntryID string
	Modules []renderModule
}

var (
	tmplOnce sync.Once
	tmpl     *template.Template
	tmplErr  error
)

func chunkTemplate() (*template.Template, error) {
	tmplOnce.Do(func() {
		tmpl, tmplErr = template.New("chunk.js.tmpl").
			Funcs(template.FuncMap{"quote": jsast.Quote}).
			ParseFS(runtimeembed.TemplatesFS(), runtimeembed.ChunkTemplate)
	})
	return tmpl, tmplErr
}

// Assemble renders one chunk per graph entry, in entry order.
func Assemble(g *graph.Graph, opts Options) ([]*Chunk, error) {
	t, err := chunkTemplate()
	if err != nil {
		return nil, fmt.Errorf("runtime template: %w", err)
	}
	banner := bannerLines(opts.Banner)

	chunks := make([]*Chunk, 0, len(g.Entries))
	for _, entry := range g.Entries {
		ids := g.ChunkOrder(entry.Name)
		data := renderData{
			Banner:  banner,
			EntryID: entry.ID,
			Modules: make([]renderModule, 0, len(ids)),
		}
		for _, id := range ids {
			m, ok := g.Module(id)
			if !ok {
				return nil, fmt.Errorf("chunk %q: module %s missing from graph", entry.Name, id)
			}
			data.Modules = append(data.Modules, renderModule{ID: m.ID, Source: m.Source})
		}

		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("chunk %q: %w", entry.Name, err)
		}
		chunks = append(chunks, &Chunk{
			Name:      entry.Name,
			EntryID:   entry.ID,
			ModuleIDs: ids,
			Code:      buf.Bytes(),
		})
	}
	return chunks, nil
}

// bannerLines splits text into line comment bodies.
func bannerLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
