package tagging

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed text-tags.json
var defaultRules []byte

// Top-level collections of a tag file.
const (
	KeyKeyword = "TAGS_BY_KEYWORD"
	KeyRegex   = "TAGS_BY_REGEX"
)

// KeywordRule tags text containing any of its keywords as a whole token.
type KeywordRule struct {
	Tag      string
	Keywords []string // lower-case
}

// RegexRule tags text matched anywhere by any of its patterns.
type RegexRule struct {
	Tag      string
	Patterns []*regexp.Regexp
}

// RuleSet is an ordered, read-only set of tagging rules.
type RuleSet struct {
	Keyword []KeywordRule
	Regex   []RegexRule
}

// Empty reports whether the set holds no rules.
func (rs *RuleSet) Empty() bool {
	return rs == nil || len(rs.Keyword) == 0 && len(rs.Regex) == 0
}

// Load reads a tag file. An empty path loads the bundled default rules.
func Load(path string) (*RuleSet, error) {
	data := defaultRules
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tag file: %w", err)
		}
	}
	rs, err := Parse(data)
	if err != nil {
		if path == "" {
			path = "<default>"
		}
		return nil, fmt.Errorf("parse tag file %s: %w", path, err)
	}
	return rs, nil
}

// LoadOrEmpty is Load that logs failures and returns an empty set instead.
func LoadOrEmpty(path string, log *slog.Logger) *RuleSet {
	rs, err := Load(path)
	if err != nil {
		log.Warn("tagging disabled", "tagging_file", path, "error", err)
		return &RuleSet{}
	}
	return rs
}

// Parse decodes a JSON or YAML tag document, keeping rule order as written.
func Parse(data []byte) (*RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at top level")
	}

	rs := &RuleSet{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		switch key {
		case KeyKeyword:
			lists, err := orderedLists(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			for _, l := range lists {
				rule := KeywordRule{Tag: l.tag}
				for _, kw := range l.items {
					if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
						rule.Keywords = append(rule.Keywords, kw)
					}
				}
				rs.Keyword = append(rs.Keyword, rule)
			}
		case KeyRegex:
			lists, err := orderedLists(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			for _, l := range lists {
				rule := RegexRule{Tag: l.tag}
				for _, expr := range l.items {
					re, err := regexp.Compile("(?i)" + expr)
					if err != nil {
						return nil, fmt.Errorf("%s %q: %w", key, l.tag, err)
					}
					rule.Patterns = append(rule.Patterns, re)
				}
				rs.Regex = append(rs.Regex, rule)
			}
		}
	}
	return rs, nil
}

type namedList struct {
	tag   string
	items []string
}

func orderedLists(n *yaml.Node) ([]namedList, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of tag to list, line %d", n.Line)
	}
	out := make([]namedList, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var items []string
		if err := n.Content[i+1].Decode(&items); err != nil {
			return nil, fmt.Errorf("tag %q: %w", n.Content[i].Value, err)
		}
		out = append(out, namedList{tag: n.Content[i].Value, items: items})
	}
	return out, nil
}

// Match returns the labels of keyword and regex rules that fire on text, each
// in rule order and each label at most once.
func (rs *RuleSet) Match(text string) (keywordTags, regexTags []string) {
	if rs.Empty() {
		return nil, nil
	}

	tokens := Tokens(text)
	for _, rule := range rs.Keyword {
		for _, kw := range rule.Keywords {
			if _, ok := tokens[kw]; ok {
				keywordTags = appendOnce(keywordTags, rule.Tag)
				break
			}
		}
	}
	for _, rule := range rs.Regex {
		for _, re := range rule.Patterns {
			if re.MatchString(text) {
				regexTags = appendOnce(regexTags, rule.Tag)
				break
			}
		}
	}
	return keywordTags, regexTags
}

// Tokens splits lower-cased text on every rune that is not a letter or digit.
func Tokens(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func appendOnce(tags []string, tag string) []string {
	if slices.Contains(tags, tag) {
		return tags
	}
	return append(tags, tag)
}
