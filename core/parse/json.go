package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"golang.org/x/text/unicode/norm"
)

// errNotPosts is returned when a JSON document holds nothing shaped like a post.
var errNotPosts = errors.New("no post objects in JSON document")

// wrapperKeys are the keys under which a model sometimes nests the post array.
var wrapperKeys = []string{"posts", "articles", "items", "data", "records", "results"}

// jsonExtraKeys are object keys seen in structured output that are not tag
// names or alias labels.
var jsonExtraKeys = [roleCount][]string{
	RoleTitle:         {"heading", "subject"},
	RoleAngle:         {"category", "perspective", "tag"},
	RoleVisualKeyword: {"image", "imageQuery", "imageKeywords", "visualKeywords", "keywords"},
	RoleBody:          {"text", "article", "markdown"},
}

// decodeJSON unmarshals content into T. Invalid JSON is repaired with
// jsonrepair and retried; if that still fails, {"type": ..., "value": ...}
// wrappers that models copy from a schema are unwrapped before a last try.
//
// Example:
//
//	posts, err := decodeJSON[[]map[string]any](`[{title: 'A', body: 'B',}]`)
func decodeJSON[T any](content string) (T, error) {
	var result T
	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("unmarshal %T failed and JSON could not be repaired: %w (repair: %v)", result, err, repairErr)
	}

	result = *new(T)
	if err = json.Unmarshal([]byte(repaired), &result); err == nil {
		return result, nil
	}

	unwrapped, unwrapErr := unwrapSchemaValues(repaired)
	if unwrapErr == nil {
		result = *new(T)
		if err = json.Unmarshal([]byte(unwrapped), &result); err == nil {
			return result, nil
		}
	}
	return *new(T), fmt.Errorf("unmarshal repaired JSON as %T: %w", result, err)
}

// unwrapSchemaValues replaces every {"type": ..., "value": ...} pair in a
// JSON document with its value:
//
//	{"title": {"type": "string", "value": "A"}}  ->  {"title": "A"}
func unwrapSchemaValues(doc string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(doc), &data); err != nil {
		return "", err
	}
	out, err := json.Marshal(recursiveUnwrap(data))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if _, hasType := v["type"]; hasType {
			if value, hasValue := v["value"]; hasValue && len(v) == 2 {
				return recursiveUnwrap(value)
			}
		}
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = recursiveUnwrap(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = recursiveUnwrap(val)
		}
		return result
	default:
		return data
	}
}

// looksLikeJSON reports whether normalized text should take the structured
// shortcut: no sigil tags and a leading bracket.
func looksLikeJSON(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || (t[0] != '[' && t[0] != '{') {
		return false
	}
	return !sigilRe.MatchString(t)
}

// decodeJSONPosts reads posts out of a JSON array, a single post object or
// an object that wraps the array. Objects without any recognized key are
// skipped; missing fields take the parser defaults.
func (p *Parser) decodeJSONPosts(text string) ([]Post, [][roleCount]Source, error) {
	doc, err := decodeJSON[any](strings.TrimSpace(text))
	if err != nil {
		return nil, nil, err
	}
	doc = recursiveUnwrap(doc)

	var (
		posts   []Post
		sources [][roleCount]Source
	)
	for _, obj := range postObjects(doc) {
		post, src, ok := p.postFromObject(obj)
		if !ok {
			continue
		}
		posts = append(posts, post)
		sources = append(sources, src)
	}
	if len(posts) == 0 {
		return nil, nil, errNotPosts
	}
	return posts, sources, nil
}

// postObjects finds the candidate post objects in a decoded document.
func postObjects(doc any) []map[string]any {
	switch v := doc.(type) {
	case []any:
		objs := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				objs = append(objs, obj)
			}
		}
		return objs
	case map[string]any:
		keys := slices.Sorted(maps.Keys(v))
		for _, key := range wrapperKeys {
			for _, k := range keys {
				if !strings.EqualFold(k, key) {
					continue
				}
				if arr, ok := v[k].([]any); ok {
					return postObjects(arr)
				}
			}
		}
		return []map[string]any{v}
	default:
		return nil
	}
}

func (p *Parser) postFromObject(obj map[string]any) (Post, [roleCount]Source, bool) {
	var (
		post    Post
		sources [roleCount]Source
		rank    [roleCount]int
		found   bool
	)
	// Keys are visited in sorted order and a role keeps its best-ranked
	// non-empty value, so "title" beats "heading" whatever the map order.
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		k, ok := p.jsonKeys[foldKey(key)]
		if !ok {
			continue
		}
		found = true
		if sources[k.role] == SourceJSON && rank[k.role] <= k.rank {
			continue
		}
		if s := jsonText(obj[key]); s != "" {
			*post.field(k.role) = s
			sources[k.role] = SourceJSON
			rank[k.role] = k.rank
		}
	}
	if !found {
		return Post{}, sources, false
	}

	for _, role := range shortRoles {
		if sources[role] == SourceDefault {
			*post.field(role) = p.cfg.defaults[role]
		}
	}
	if sources[RoleBody] == SourceDefault {
		raw, err := json.Marshal(obj)
		if err != nil {
			return Post{}, sources, false
		}
		post.Body = string(raw)
	} else {
		post.Body = healBody(post.Body)
	}
	return post, sources, true
}

// jsonText renders a JSON value as field text. Arrays of strings, which
// models produce for keywords and paragraphs, are joined.
func jsonText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return fmt.Sprint(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := jsonText(item); s != "" {
				parts = append(parts, s)
			}
		}
		sep := ", "
		for _, s := range parts {
			if len(s) > 40 {
				sep = "\n\n"
				break
			}
		}
		return strings.Join(parts, sep)
	default:
		return ""
	}
}

// foldKey maps "Image_Keyword", "imageKeyword" and "image keyword" to the
// same lookup key.
func foldKey(key string) string {
	key = strings.ToLower(norm.NFKC.String(key))
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ', '\t':
			return -1
		}
		return r
	}, key)
}

// jsonKey is the role a folded object key maps to. Lower ranks are
// preferred when an object carries several keys for one role.
type jsonKey struct {
	role Role
	rank int
}

// buildJSONKeys indexes every tag name, alias label and extra key by its
// folded form, ranked in that order. Earlier roles win on collision.
func buildJSONKeys(cfg *config) map[string]jsonKey {
	keys := make(map[string]jsonKey)
	add := func(name string, role Role) {
		k := foldKey(name)
		if _, taken := keys[k]; !taken && k != "" {
			keys[k] = jsonKey{role: role, rank: len(keys)}
		}
	}
	for role := RoleTitle; role < roleCount; role++ {
		add(role.String(), role)
		for _, n := range cfg.tagNames[role] {
			add(n, role)
		}
		for _, a := range cfg.aliases[role] {
			add(a, role)
		}
		for _, e := range jsonExtraKeys[role] {
			add(e, role)
		}
	}
	return keys
}
