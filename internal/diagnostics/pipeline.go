package diagnostics

import "sort"

// Pipeline aggregates diagnostics from multiple passes/files, applies the
// active rule configuration (enable/disable/severity override), and
// deduplicates by Key before handing results to an output adapter.
type Pipeline struct {
	profile RuleProfile
	byFile  map[string]map[Key]Diagnostic
}

// NewPipeline creates a Pipeline governed by profile.
func NewPipeline(profile RuleProfile) *Pipeline {
	return &Pipeline{profile: profile, byFile: make(map[string]map[Key]Diagnostic)}
}

// Report files a batch of diagnostics, usually the output of one analysis
// pass over one file. Diagnostics for rules disabled by the active profile
// are dropped; surviving ones have their severity overridden if configured.
func (p *Pipeline) Report(diags []Diagnostic) {
	for _, d := range diags {
		rule, ok := p.profile.Rules[d.Code]
		if ok && !rule.Enabled {
			continue
		}
		if ok && rule.Severity != "" {
			d.Severity = rule.Severity
		}
		bucket, ok := p.byFile[d.File]
		if !ok {
			bucket = make(map[Key]Diagnostic)
			p.byFile[d.File] = bucket
		}
		bucket[d.Key()] = d
	}
}

// ForFile returns the deduplicated diagnostics for file in source order.
func (p *Pipeline) ForFile(file string) []Diagnostic {
	bucket := p.byFile[file]
	out := make([]Diagnostic, 0, len(bucket))
	for _, d := range bucket {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Span.Start != out[j].Span.Start {
			return out[i].Span.Start < out[j].Span.Start
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// All returns every diagnostic currently retained, grouped by file.
func (p *Pipeline) All() map[string][]Diagnostic {
	out := make(map[string][]Diagnostic, len(p.byFile))
	for f := range p.byFile {
		out[f] = p.ForFile(f)
	}
	return out
}

// Clear drops every diagnostic for file, used before re-reporting a fresh
// analysis pass over that file (the dedup key already makes re-reporting
// identical diagnostics a no-op, but a file whose errors were fixed needs
// the stale ones removed).
func (p *Pipeline) Clear(file string) {
	delete(p.byFile, file)
}

// Reporter is the output-adapter contract. Concrete
// adapters (CLI text, LSP push, SARIF/HTML) implement this; none of them
// live in the Core.
type Reporter interface {
	Report(file string, diags []Diagnostic) error
}
