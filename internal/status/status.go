// Package status classifies free-text upstream status phrases into canonical
// buckets and display labels from a single rule table.
package status

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
)

//go:embed rules.yaml
var defaultRules []byte

// Result is the classification of one raw phrase.
type Result struct {
	Bucket domain.Bucket `yaml:"bucket"`
	Label  string        `yaml:"label"`
}

// Rule maps any of its patterns to a bucket and label.
type Rule struct {
	Patterns []string      `yaml:"patterns"`
	Bucket   domain.Bucket `yaml:"bucket"`
	Label    string        `yaml:"label"`
}

// Tab describes membership of one bucket tab for a category.
type Tab struct {
	Patterns  []string `yaml:"patterns"`
	Remainder bool     `yaml:"remainder"`
}

// Table is the complete classification configuration.
type Table struct {
	Rules    []Rule                                      `yaml:"rules"`
	Fallback Result                                      `yaml:"fallback"`
	Tabs     map[domain.TicketType]map[domain.Bucket]Tab `yaml:"tabs"`
}

// Classifier evaluates a Table. It is immutable and safe for concurrent use.
type Classifier struct {
	rules    []Rule
	fallback Result
	tabs     map[domain.TicketType]map[domain.Bucket]Tab
}

// Parse builds a Classifier from YAML.
func Parse(data []byte) (*Classifier, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse status rules: %w", err)
	}
	return New(table)
}

// New validates a table and folds its patterns.
func New(table Table) (*Classifier, error) {
	if _, ok := domain.ParseBucket(string(table.Fallback.Bucket)); !ok {
		return nil, fmt.Errorf("status rules: invalid fallback bucket %q", table.Fallback.Bucket)
	}
	if strings.TrimSpace(table.Fallback.Label) == "" {
		return nil, fmt.Errorf("status rules: fallback label required")
	}

	c := &Classifier{
		fallback: table.Fallback,
		tabs:     make(map[domain.TicketType]map[domain.Bucket]Tab, len(table.Tabs)),
	}
	for i, rule := range table.Rules {
		if _, ok := domain.ParseBucket(string(rule.Bucket)); !ok {
			return nil, fmt.Errorf("status rules: rule %d has invalid bucket %q", i, rule.Bucket)
		}
		if rule.Label == "" || len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("status rules: rule %d needs patterns and a label", i)
		}
		c.rules = append(c.rules, Rule{Patterns: foldAll(rule.Patterns), Bucket: rule.Bucket, Label: rule.Label})
	}
	for category, tabs := range table.Tabs {
		if _, ok := domain.ParseTicketType(string(category)); !ok {
			return nil, fmt.Errorf("status rules: unknown category %q", category)
		}
		folded := make(map[domain.Bucket]Tab, len(tabs))
		remainders := 0
		for bucket, tab := range tabs {
			if _, ok := domain.ParseBucket(string(bucket)); !ok {
				return nil, fmt.Errorf("status rules: %s has invalid tab %q", category, bucket)
			}
			if tab.Remainder {
				remainders++
			}
			folded[bucket] = Tab{Patterns: foldAll(tab.Patterns), Remainder: tab.Remainder}
		}
		if remainders > 1 {
			return nil, fmt.Errorf("status rules: %s has more than one remainder tab", category)
		}
		c.tabs[category] = folded
	}
	return c, nil
}

// Default returns the classifier for the embedded rule table.
func Default() *Classifier {
	return defaultClassifier
}

var defaultClassifier = mustParse(defaultRules)

func mustParse(data []byte) *Classifier {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Normalize classifies raw; bucket and label always come from the same rule.
func (c *Classifier) Normalize(raw string) Result {
	text := fold(raw)
	if text == "" {
		return c.fallback
	}
	for _, rule := range c.rules {
		if containsAny(text, rule.Patterns) {
			return Result{Bucket: rule.Bucket, Label: rule.Label}
		}
	}
	return c.fallback
}

// Classify returns the canonical bucket for raw.
func (c *Classifier) Classify(raw string) domain.Bucket {
	return c.Normalize(raw).Bucket
}

// DisplayLabel returns the human-readable label for raw. It is never empty.
func (c *Classifier) DisplayLabel(raw string) string {
	return c.Normalize(raw).Label
}

// InTab reports whether raw belongs to the bucket tab of category. Categories
// without tab rules fall back to generic classification.
func (c *Classifier) InTab(category domain.TicketType, raw string, bucket domain.Bucket) bool {
	tabs, ok := c.tabs[category]
	if !ok {
		return c.Classify(raw) == bucket
	}
	tab, ok := tabs[bucket]
	if !ok {
		return false
	}
	text := fold(raw)
	if !tab.Remainder {
		return containsAny(text, tab.Patterns)
	}
	for other, otherTab := range tabs {
		if other != bucket && containsAny(text, otherTab.Patterns) {
			return false
		}
	}
	return true
}

// Classify uses the default table.
func Classify(raw string) domain.Bucket { return defaultClassifier.Classify(raw) }

// DisplayLabel uses the default table.
func DisplayLabel(raw string) string { return defaultClassifier.DisplayLabel(raw) }

// Normalize uses the default table.
func Normalize(raw string) Result { return defaultClassifier.Normalize(raw) }

// InTab uses the default table.
func InTab(category domain.TicketType, raw string, bucket domain.Bucket) bool {
	return defaultClassifier.InTab(category, raw, bucket)
}

func fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

func foldAll(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if f := fold(p); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
