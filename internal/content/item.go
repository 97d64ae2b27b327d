package content

import (
	"strings"

	"gopkg.in/yaml.v3"

	"lattice/internal/core/errors"
)

// Item is one piece of source content handed to extraction. Frontmatter is
// the decoded YAML header; Body is everything after it. The engine never
// interprets the body, it only carries it to extractors.
type Item struct {
	// Path is the absolute location on disk.
	Path string
	// Rel is the path relative to the content root, slash-separated. It is
	// the stable identity used for slug IDs and hashing.
	Rel string

	Frontmatter map[string]interface{}
	Body        string
}

const frontmatterFence = "---"

// Parse splits raw content into YAML frontmatter and body. Content without a
// frontmatter fence is a valid item with nil frontmatter. A fenced but
// undecodable header is a PARSE_ERROR naming the item.
func Parse(path, rel string, raw []byte) (Item, error) {
	item := Item{Path: path, Rel: rel}

	text := string(raw)
	if !strings.HasPrefix(text, frontmatterFence+"\n") && text != frontmatterFence {
		item.Body = text
		return item, nil
	}

	rest := strings.TrimPrefix(text, frontmatterFence+"\n")

	// A closing fence on the very next line means an empty header.
	var header, body string
	switch {
	case rest == frontmatterFence:
	case strings.HasPrefix(rest, frontmatterFence+"\n"):
		body = rest[len(frontmatterFence)+1:]
	default:
		end := strings.Index(rest, "\n"+frontmatterFence)
		if end < 0 {
			err := errors.Newf(errors.CodeParseError, "%s: unterminated frontmatter", rel)
			return Item{}, errors.AddContext(err, errors.CtxPath, path)
		}
		header = rest[:end]
		body = strings.TrimPrefix(rest[end+len("\n"+frontmatterFence):], "\n")
	}

	if strings.TrimSpace(header) == "" {
		item.Body = body
		return item, nil
	}

	fm := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		wrapped := errors.Wrap(err, errors.CodeParseError, rel+": invalid frontmatter")
		return Item{}, errors.AddContext(wrapped, errors.CtxPath, path)
	}

	item.Frontmatter = fm
	item.Body = body
	return item, nil
}

// StringField returns a frontmatter value as a string, empty when absent or
// not a string.
func (it Item) StringField(key string) string {
	if it.Frontmatter == nil {
		return ""
	}
	s, _ := it.Frontmatter[key].(string)
	return s
}

// StringListField returns a frontmatter value as a string slice. A single
// scalar string is treated as a one-element list.
func (it Item) StringListField(key string) []string {
	if it.Frontmatter == nil {
		return nil
	}
	switch v := it.Frontmatter[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
