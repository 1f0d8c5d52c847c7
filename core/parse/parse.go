package parse

import (
	"context"
	"regexp"
	"unicode/utf8"

	"github.com/leofalp/trendweaver/internal/utils"
	"github.com/leofalp/trendweaver/providers/observability"
)

// previewLength bounds the raw text copied into trace logs.
const previewLength = 200

// Parser turns raw model output into posts. It is immutable after New and
// safe for concurrent use.
type Parser struct {
	cfg         *config
	delimiterRe *regexp.Regexp
	roleOf      map[string]Role
	jsonKeys    map[string]jsonKey
	chain       []extractor
}

// New builds a Parser. Without options it behaves like [Posts].
//
//	p := parse.New(
//	    parse.WithMinChunkLength(10),
//	    parse.WithAliases(parse.RoleTitle, "标题", "Title", "主题"),
//	)
//	posts := p.Parse(raw)
func New(opts ...Option) *Parser {
	cfg := applyOptions(opts...)
	p := &Parser{
		cfg:         cfg,
		delimiterRe: delimiterPattern(cfg.delimiter),
		roleOf:      make(map[string]Role),
		jsonKeys:    buildJSONKeys(cfg),
	}
	for role := RoleTitle; role < roleCount; role++ {
		for _, name := range cfg.tagNames[role] {
			if _, taken := p.roleOf[name]; !taken {
				p.roleOf[name] = role
			}
		}
	}
	p.chain = []extractor{
		{source: SourceTag, find: p.fromTag},
		{source: SourceAlias, find: p.fromAlias},
	}
	return p
}

var defaultParser = New()

// Posts parses raw with the default settings. It never returns nil.
func Posts(raw string) []Post {
	return defaultParser.Parse(raw)
}

// Parse returns the posts recovered from raw, in source order. It never
// returns nil and never fails; unusable input yields an empty slice.
func (p *Parser) Parse(raw string) []Post {
	return p.ParseResult(context.Background(), raw).Posts
}

// First returns the first post in raw. It serves single-post requests such
// as rewriting one article, where the caller keeps the previous version when
// ok is false.
func (p *Parser) First(raw string) (Post, bool) {
	posts := p.Parse(raw)
	if len(posts) == 0 {
		return Post{}, false
	}
	return posts[0], true
}

// Tag returns the canonical sigil for role, such as "$$$TITLE$$$".
func (p *Parser) Tag(role Role) string {
	if !role.valid() {
		return ""
	}
	return "$$$" + p.cfg.tagNames[role][0] + "$$$"
}

// Delimiter returns the record separator token.
func (p *Parser) Delimiter() string {
	return p.cfg.delimiter
}

// ParseResult is Parse with diagnostics. The observer set with WithObserver,
// or else one carried by ctx, receives a span, metrics and logs; with neither
// the call does no I/O.
func (p *Parser) ParseResult(ctx context.Context, raw string) Result {
	observer := p.cfg.observer
	if observer == nil {
		observer = observability.ObserverFromContext(ctx)
	}
	if observer == nil {
		return p.run(raw)
	}

	timer := utils.NewTimer()
	inputLen := utf8.RuneCountInString(raw)
	ctx, span := observer.StartSpan(ctx, observability.SpanParsePosts,
		observability.Int(observability.AttrParseInputLength, inputLen))
	defer span.End()

	observer.Trace(ctx, "parsing model output",
		observability.String(observability.AttrParseInputPreview, utils.TruncateString(raw, previewLength)))

	res := p.run(raw)
	timer.Stop()

	attrs := []observability.Attribute{
		observability.String(observability.AttrParseStrategy, res.Strategy.String()),
		observability.Int(observability.AttrParseChunks, res.Chunks),
		observability.Int(observability.AttrParseDiscarded, res.Discarded),
		observability.Int(observability.AttrParsePosts, len(res.Posts)),
		observability.Int(observability.AttrParseIncomplete, res.Incomplete()),
	}
	span.SetAttributes(attrs...)
	switch res.Strategy {
	case StrategyTitleResplit:
		span.AddEvent(observability.EventParseFallback)
	case StrategyJSON:
		span.AddEvent(observability.EventParseJSON)
	}

	strategy := observability.String(observability.AttrParseStrategy, res.Strategy.String())
	observer.Counter(observability.MetricParseCount).Add(ctx, 1, strategy)
	observer.Counter(observability.MetricParsePosts).Add(ctx, int64(len(res.Posts)), strategy)
	observer.Histogram(observability.MetricParseDuration).Record(ctx, timer.Milliseconds(), strategy)
	p.reportDefaults(ctx, observer, res)

	if len(res.Posts) == 0 {
		observer.Counter(observability.MetricParseEmpty).Add(ctx, 1)
		observer.Warn(ctx, "no posts recovered from model output",
			observability.Int(observability.AttrParseInputLength, inputLen),
			observability.Int(observability.AttrParseDiscarded, res.Discarded))
		span.SetStatus(observability.StatusError, "no posts recovered")
		return res
	}

	observer.Debug(ctx, "parse finished", append(attrs, observability.Duration(observability.AttrDuration, timer.GetDuration()))...)
	span.SetStatus(observability.StatusOK, "")
	return res
}

// reportDefaults counts defaulted fields per role.
func (p *Parser) reportDefaults(ctx context.Context, observer observability.Provider, res Result) {
	var perRole [roleCount]int64
	for _, fields := range res.Fields {
		for role, src := range fields {
			if src == SourceDefault {
				perRole[role]++
			}
		}
	}
	for role, n := range perRole {
		if n == 0 {
			continue
		}
		observer.Counter(observability.MetricParseDefaults).Add(ctx, n,
			observability.String(observability.AttrParseField, Role(role).String()))
	}
}

// run executes the pipeline: normalize, the JSON shortcut, split, then
// assemble each chunk.
func (p *Parser) run(raw string) Result {
	text := p.normalize(raw)

	if p.cfg.decodeJSON && looksLikeJSON(text) {
		if posts, fields, err := p.decodeJSONPosts(text); err == nil {
			return Result{
				Posts:    posts,
				Fields:   fields,
				Strategy: StrategyJSON,
				Chunks:   len(posts),
			}
		}
	}

	chunks, strategy, dropped := p.split(text)
	res := Result{
		Posts:     make([]Post, 0, len(chunks)),
		Fields:    make([][roleCount]Source, 0, len(chunks)),
		Strategy:  strategy,
		Chunks:    len(chunks),
		Discarded: dropped,
	}
	for _, chunk := range chunks {
		post, fields := p.assemble(chunk)
		res.Posts = append(res.Posts, post)
		res.Fields = append(res.Fields, fields)
	}
	return res
}
