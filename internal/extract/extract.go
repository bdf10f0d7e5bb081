// Package extract implements the deterministic CSS-subset, XPath-subset,
// and regex extraction strategies the hallucination checker uses to pull a
// verification target out of a fetched document.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/thinkwright/sentryguard/internal/guarderrors"
)

// matcher decides whether an opening tag (lowercased name + raw attribute
// map) satisfies a selector.
type matcher func(tag string, attrs map[string]string) bool

// cssMatcher parses a selector of the form `tag.class1.class2#id`, where
// tokens are parsed greedily and bare words after the first bare word are
// treated as additional classes (spec.md §4.8 CSS subset grammar).
func cssMatcher(selector string) matcher {
	tokenRe := regexp.MustCompile(`([#.]?)([a-zA-Z0-9_-]+)`)
	tokens := tokenRe.FindAllStringSubmatch(strings.TrimSpace(selector), -1)

	var tag string
	classes := map[string]struct{}{}
	var id string
	haveTag := false

	for _, tok := range tokens {
		prefix, value := tok[1], strings.ToLower(tok[2])
		switch {
		case prefix == "" && !haveTag:
			tag = value
			haveTag = true
		case prefix == ".":
			classes[value] = struct{}{}
		case prefix == "#":
			id = value
		case prefix == "" && haveTag:
			classes[value] = struct{}{}
		}
	}
	if len(tokens) == 0 && selector != "" {
		tag = strings.ToLower(selector)
	}

	return func(tagName string, attrs map[string]string) bool {
		if tag != "" && strings.ToLower(tagName) != tag {
			return false
		}
		if id != "" && strings.ToLower(attrs["id"]) != id {
			return false
		}
		if len(classes) > 0 {
			attrClasses := map[string]struct{}{}
			for _, part := range strings.Fields(attrs["class"]) {
				attrClasses[strings.ToLower(part)] = struct{}{}
			}
			for c := range classes {
				if _, ok := attrClasses[c]; !ok {
					return false
				}
			}
		}
		return true
	}
}

var xpathRe = regexp.MustCompile(`^//([a-zA-Z0-9_-]+)(?:\[@([a-zA-Z0-9_-]+)='([^']*)'\])?$`)

// xpathMatcher parses the `//tag` or `//tag[@attr='value']` grammar
// (spec.md §4.8 XPath subset). Any other expression is a parse error.
func xpathMatcher(expr string) (matcher, error) {
	m := xpathRe.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return nil, fmt.Errorf("%w: unsupported xpath expression %q", guarderrors.ErrParse, expr)
	}
	tag := strings.ToLower(m[1])
	attrName, attrValue := m[2], m[3]

	return func(tagName string, attrs map[string]string) bool {
		if strings.ToLower(tagName) != tag {
			return false
		}
		if attrName != "" {
			return attrs[attrName] == attrValue
		}
		return true
	}, nil
}

// node tracks one open element while walking the document.
type node struct {
	match  bool
	text   []string
	joined string
}

// collect runs the matching walk described in spec.md §4.8: every element
// whose open tag satisfies m records its concatenated inner text; text from
// a matched child propagates up into its parent's accumulator so enclosing
// matches still observe descendant text.
func collect(document string, m matcher) ([]string, error) {
	tok := html.NewTokenizer(strings.NewReader(document))
	var stack []*node
	var matches []string

	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return matches, nil
		case html.TextToken:
			if len(stack) > 0 {
				text := strings.TrimSpace(string(tok.Text()))
				if text != "" {
					top := stack[len(stack)-1]
					top.text = append(top.text, text)
				}
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tok.TagName()
			attrs := map[string]string{}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = tok.TagAttr()
				attrs[string(key)] = string(val)
			}
			n := &node{match: m(string(name), attrs)}
			if tt == html.SelfClosingTagToken {
				closeNode(n, &matches)
				propagate(stack, n)
			} else {
				stack = append(stack, n)
			}
		case html.EndTagToken:
			if len(stack) == 0 {
				continue
			}
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			closeNode(n, &matches)
			propagate(stack, n)
		}
	}
}

func closeNode(n *node, matches *[]string) {
	text := strings.TrimSpace(strings.Join(n.text, " "))
	if n.match && text != "" {
		*matches = append(*matches, text)
	}
	n.joined = text
}

func propagate(stack []*node, n *node) {
	if len(stack) > 0 && n.joined != "" {
		parent := stack[len(stack)-1]
		parent.text = append(parent.text, n.joined)
	}
}

func finish(matches []string, mustInclude string) (string, error) {
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no elements matched selector", guarderrors.ErrParse)
	}
	text := strings.TrimSpace(strings.Join(matches, " "))
	if text == "" {
		return "", fmt.Errorf("%w: matched elements contained no text", guarderrors.ErrParse)
	}
	if mustInclude != "" && !strings.Contains(strings.ToLower(text), strings.ToLower(mustInclude)) {
		return "", fmt.Errorf("%w: required text missing from extraction result", guarderrors.ErrParse)
	}
	return text, nil
}

// CSS extracts text content from HTML using a limited CSS selector.
func CSS(document, selector, mustInclude string) (string, error) {
	matches, err := collect(document, cssMatcher(selector))
	if err != nil {
		return "", err
	}
	return finish(matches, mustInclude)
}

// XPath extracts text content from HTML using a limited XPath expression.
func XPath(document, expr, mustInclude string) (string, error) {
	m, err := xpathMatcher(expr)
	if err != nil {
		return "", err
	}
	matches, err := collect(document, m)
	if err != nil {
		return "", err
	}
	return finish(matches, mustInclude)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Regex compiles pattern case-insensitively by default and returns the first
// match with internal whitespace collapsed to a single space.
func Regex(text, pattern string) (string, error) {
	compiled, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return "", fmt.Errorf("%w: invalid regular expression %q: %v", guarderrors.ErrParse, pattern, err)
	}
	match := compiled.FindString(text)
	if match == "" {
		return "", fmt.Errorf("%w: regex %q not found in corpus", guarderrors.ErrParse, pattern)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(match, " ")), nil
}

// Contains reports whether the probe (mustInclude if set, else pattern) is
// a case-insensitive substring of document.
func Contains(document, pattern, mustInclude string) bool {
	probe := mustInclude
	if probe == "" {
		probe = pattern
	}
	return strings.Contains(strings.ToLower(document), strings.ToLower(probe))
}
