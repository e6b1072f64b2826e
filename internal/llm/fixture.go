package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// fixtureProvider implements Provider from canned response files, selected at
// construction like any other backend. The model argument names either a
// single response file or a directory of them; a directory's files are served
// in sorted order, one per Complete call, cycling when exhausted. This is the
// offline/demo backend and the backbone of golden tests.
type fixtureProvider struct {
	mu        sync.Mutex
	responses []string
	next      int
}

func newFixtureProvider(path string) (Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("llm: fixture provider requires a response file or directory as model")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("llm: fixture path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("llm: read fixture dir: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("llm: fixture directory %s contains no response files", path)
	}

	responses := make([]string, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("llm: read fixture %s: %w", f, err)
		}
		responses = append(responses, string(b))
	}
	return &fixtureProvider{responses: responses}, nil
}

func (p *fixtureProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	resp := p.responses[p.next%len(p.responses)]
	p.next++
	return resp, nil
}
