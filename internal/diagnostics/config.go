package diagnostics

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// RuleConfig is one rule's override entry.
type RuleConfig struct {
	Enabled       bool                   `toml:"enabled" yaml:"enabled"`
	Severity      Severity               `toml:"severity" yaml:"severity"`
	MinConfidence float64                `toml:"min_confidence" yaml:"min_confidence"`
	Config        map[string]interface{} `toml:"config" yaml:"config"`
}

// RuleProfile is the normalized in-memory shape both the TOML and YAML
// parsers converge on: `{active_profile, profiles, rules}`.
type RuleProfile struct {
	ActiveProfile string                   `toml:"active_profile" yaml:"active_profile"`
	Profiles      map[string]NamedProfile  `toml:"profiles" yaml:"profiles"`
	Rules         map[string]RuleConfig    `toml:"rules" yaml:"rules"`
}

// NamedProfile is a named snapshot of enabled rules.
type NamedProfile struct {
	EnabledRules []string `toml:"enabled_rules" yaml:"enabled_rules"`
}

// DefaultProfile enables every well-known rule code at its natural severity.
func DefaultProfile() RuleProfile {
	rules := map[string]RuleConfig{}
	for code, sev := range defaultSeverities {
		rules[code] = RuleConfig{Enabled: true, Severity: sev}
	}
	return RuleProfile{ActiveProfile: "default", Rules: rules}
}

var defaultSeverities = map[string]Severity{
	CodeUndefinedVariable:     SeverityError,
	CodeUnknownMember:         SeverityError,
	CodeNotConstructible:      SeverityError,
	CodeWrongArgumentCount:    SeverityError,
	CodeArgumentTypeMismatch:  SeverityError,
	CodeAvailabilityViolation: SeverityWarning,
	CodeAmbiguousMember:       SeverityWarning,
	CodeAmbiguousConstructor:  SeverityWarning,
	CodeUseBeforeInit:         SeverityWarning,
	CodeDuplicateDeclaration:  SeverityWarning,
	CodeUnusedLocal:           SeverityHint,
	CodeDeadCode:              SeverityWarning,
	CodeUnknownType:           SeverityWarning,
	CodeBrokenInheritance:     SeverityError,
	CodeExtraction:            SeverityWarning,
	CodeConfigParse:           SeverityWarning,
}

// LoadProfile parses a rule-configuration document, accepting either TOML or
// YAML and normalizing to the same RuleProfile shape. Format is
// chosen by a best-effort sniff: YAML if the text contains a top-level
// "active_profile:" or starts with "---", TOML otherwise.
func LoadProfile(data []byte) (RuleProfile, error) {
	var profile RuleProfile
	text := string(data)

	if looksLikeYAML(text) {
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return RuleProfile{}, fmt.Errorf("diagnostics: parse yaml rule config: %w", err)
		}
		return applyActiveProfile(profile), nil
	}

	if _, err := toml.Decode(text, &profile); err != nil {
		// Fall back to YAML in case the sniff was wrong.
		if yerr := yaml.Unmarshal(data, &profile); yerr == nil {
			return applyActiveProfile(profile), nil
		}
		return RuleProfile{}, fmt.Errorf("diagnostics: parse toml rule config: %w", err)
	}
	return applyActiveProfile(profile), nil
}

func looksLikeYAML(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "---") || strings.Contains(text, "active_profile:")
}

// applyActiveProfile layers a named profile's enabled_rules onto Rules: every
// well-known rule code is enabled if listed and disabled if not, overriding
// any enabled flag in Rules; an existing entry's severity is kept.
func applyActiveProfile(p RuleProfile) RuleProfile {
	named, ok := p.Profiles[p.ActiveProfile]
	if !ok {
		return p
	}
	allowed := make(map[string]bool, len(named.EnabledRules))
	for _, code := range named.EnabledRules {
		allowed[code] = true
	}
	if p.Rules == nil {
		p.Rules = make(map[string]RuleConfig)
	}
	for code, cfg := range defaultSeverities {
		existing, has := p.Rules[code]
		if !has {
			existing = RuleConfig{Severity: cfg}
		}
		existing.Enabled = allowed[code]
		p.Rules[code] = existing
	}
	return p
}
