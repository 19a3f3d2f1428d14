package resources

import (
	"context"
	"errors"
	"strings"

	"careerlift-backend/internal/llm"
	"careerlift-backend/internal/shared/apperr"
)

// Discoverer runs grounded searches for learning material.
type Discoverer struct {
	LLM   llm.Generator
	Model string
}

// Discover asks the backend, with search grounding, for courses and opportunities for role.
func (d *Discoverer) Discover(ctx context.Context, role, skillsText string) (DiscoveryResult, error) {
	const op = "resources.Discover"
	role = strings.TrimSpace(role)
	if role == "" {
		return DiscoveryResult{}, apperr.New(apperr.KindInvalidInput, op, errors.New("role is required"))
	}
	if d.LLM == nil {
		return DiscoveryResult{}, apperr.New(apperr.KindDiscoveryFailed, op, llm.ErrNotConfigured).WithInput(role)
	}

	skills := strings.TrimSpace(skillsText)
	if skills == "" {
		skills = "general skills for the role"
	}
	prompt := strings.NewReplacer("{{ROLE}}", role, "{{SKILLS}}", skills).Replace(discoverTemplate)

	resp, err := d.LLM.Generate(ctx, llm.Request{
		Model:     d.Model,
		Prompt:    prompt,
		Grounding: true,
	})
	if err != nil {
		return DiscoveryResult{}, apperr.New(apperr.KindDiscoveryFailed, op, err).WithInput(role)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return DiscoveryResult{}, apperr.New(apperr.KindDiscoveryFailed, op, errors.New("empty discovery text")).WithInput(role)
	}
	return DiscoveryResult{Text: text, Sources: dedupeSources(resp.Sources)}, nil
}

// dedupeSources keeps the first source per URI and skips sources without one.
func dedupeSources(in []llm.Source) []llm.Source {
	out := make([]llm.Source, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		uri := strings.TrimSpace(s.URI)
		if uri == "" {
			continue
		}
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}
		out = append(out, llm.Source{Title: strings.TrimSpace(s.Title), URI: uri})
	}
	return out
}
