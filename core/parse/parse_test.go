package parse

import (
	"bytes"
	"context"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/leofalp/trendweaver/providers/observability"
	"github.com/leofalp/trendweaver/providers/observability/slogobs"
)

const twoRecords = "$$$TITLE$$$ A\n$$$ANGLE$$$ B\n$$$IMAGE_KEYWORD$$$ c\n$$$CONTENT$$$ Hello [1] world https://x.test/1 more text ---POST_DIVIDER--- $$$TITLE$$$ D\n$$$CONTENT$$$ Bye"

func TestPosts_TwoRecords(t *testing.T) {
	got := Posts(twoRecords)
	want := []Post{
		{Title: "A", Angle: "B", VisualKeyword: "c", Body: "Hello [1] world https://x.test/1 more text"},
		{Title: "D", Angle: DefaultAngle, VisualKeyword: DefaultVisualKeyword, Body: "Bye"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Posts() = %+v, want %+v", got, want)
	}
}

func TestPosts_FallbackSplitting(t *testing.T) {
	var b strings.Builder
	for i, name := range []string{"One", "Two", "Three", "Four"} {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("$$$TITLE$$$ " + name + "\n$$$ANGLE$$$ Angle " + name +
			"\n$$$IMAGE_KEYWORD$$$ kw" + "\n$$$CONTENT$$$ Body of post " + name + ".")
	}

	got := Posts(b.String())
	if len(got) != 4 {
		t.Fatalf("Posts() returned %d posts, want 4: %+v", len(got), got)
	}
	for i, name := range []string{"One", "Two", "Three", "Four"} {
		if got[i].Title != name {
			t.Errorf("post %d title = %q, want %q", i, got[i].Title, name)
		}
		if got[i].Body != "Body of post "+name+"." {
			t.Errorf("post %d body = %q", i, got[i].Body)
		}
	}
}

func TestPosts_DefaultSubstitution(t *testing.T) {
	got := Posts("$$$TITLE$$$ Only a title here\n$$$CONTENT$$$ The real body.")
	if len(got) != 1 {
		t.Fatalf("Posts() returned %d posts, want 1", len(got))
	}
	if got[0].Angle != DefaultAngle {
		t.Errorf("Angle = %q, want default %q", got[0].Angle, DefaultAngle)
	}
	if got[0].VisualKeyword != DefaultVisualKeyword {
		t.Errorf("VisualKeyword = %q, want default %q", got[0].VisualKeyword, DefaultVisualKeyword)
	}
	if got[0].Body != "The real body." {
		t.Errorf("Body = %q, want extracted body", got[0].Body)
	}
}

func TestPosts_BodyFallsBackToChunk(t *testing.T) {
	raw := "This model ignored every instruction and wrote prose."
	got := Posts(raw)
	if len(got) != 1 {
		t.Fatalf("Posts() returned %d posts, want 1", len(got))
	}
	want := Post{Title: DefaultTitle, Angle: DefaultAngle, VisualKeyword: DefaultVisualKeyword, Body: raw}
	if got[0] != want {
		t.Errorf("Posts() = %+v, want %+v", got[0], want)
	}
}

func TestPosts_Filler(t *testing.T) {
	for _, raw := range []string{"", "Sure!", "OK, here you go.", "   \n\n  "} {
		got := Posts(raw)
		if got == nil {
			t.Errorf("Posts(%q) = nil, want empty slice", raw)
		}
		if len(got) != 0 {
			t.Errorf("Posts(%q) = %+v, want none", raw, got)
		}
	}
}

func TestPosts_NoiseRobustness(t *testing.T) {
	clean := "$$$TITLE$$$ Market update\n$$$ANGLE$$$ Finance\n$$$IMAGE_KEYWORD$$$ stock chart\n$$$CONTENT$$$ Prices rose today."
	want := Posts(clean)

	tests := []struct {
		name string
		raw  string
	}{
		{"code fence", "```markdown\n" + clean + "\n```"},
		{"math around value", strings.Replace(clean, "Finance", "$$Finance$$", 1)},
		{"inline math", strings.Replace(clean, "stock chart", "$stock chart$", 1)},
		{"bold tags", strings.ReplaceAll(clean, "$$$TITLE$$$", "**$$$TITLE$$$**")},
		{"bold value", strings.Replace(clean, "Market update", "**Market update**", 1)},
		{"spaced tag", strings.Replace(clean, "$$$IMAGE_KEYWORD$$$", "$$$ Image Keyword $$$", 1)},
		{"crlf", strings.ReplaceAll(clean, "\n", "\r\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Posts(tt.raw); !reflect.DeepEqual(got, want) {
				t.Errorf("Posts() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestPosts_Aliases(t *testing.T) {
	raw := "**标题：** 春天的第一场雨\n**角度：** 生活\n**图片关键词：** spring rain\n**正文：** 今天下了第一场春雨。\n空气很清新。"
	got := Posts(raw)
	if len(got) != 1 {
		t.Fatalf("Posts() returned %d posts, want 1", len(got))
	}
	want := Post{
		Title:         "春天的第一场雨",
		Angle:         "生活",
		VisualKeyword: "spring rain",
		Body:          "今天下了第一场春雨。\n空气很清新。",
	}
	if got[0] != want {
		t.Errorf("Posts() = %+v, want %+v", got[0], want)
	}
}

func TestPosts_HTML(t *testing.T) {
	raw := "<p>$$$TITLE$$$ Hello there</p><p>$$$CONTENT$$$ A body in <b>HTML</b>.</p>"
	got := Posts(raw)
	if len(got) != 1 {
		t.Fatalf("Posts() returned %d posts, want 1: %+v", len(got), got)
	}
	if got[0].Title != "Hello there" {
		t.Errorf("Title = %q, want %q", got[0].Title, "Hello there")
	}
	if got[0].Body != "A body in HTML." {
		t.Errorf("Body = %q, want %q", got[0].Body, "A body in HTML.")
	}

	got = New(WithHTML(false)).Parse(raw)
	if len(got) != 1 || !strings.Contains(got[0].Title, "</p>") {
		t.Errorf("Parse() with HTML disabled = %+v, want raw markup kept", got)
	}
}

func TestPosts_JSON(t *testing.T) {
	raw := "```json\n[{\"title\": \"A\", \"angle\": \"B\", \"image_keyword\": \"c\", \"body\": \"Hello world\"},\n {title: 'D', content: 'Bye',}]\n```"
	got := Posts(raw)
	want := []Post{
		{Title: "A", Angle: "B", VisualKeyword: "c", Body: "Hello world"},
		{Title: "D", Angle: DefaultAngle, VisualKeyword: DefaultVisualKeyword, Body: "Bye"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Posts() = %+v, want %+v", got, want)
	}

	if got := New(WithJSON(false)).ParseResult(context.Background(), raw); got.Strategy == StrategyJSON {
		t.Errorf("ParseResult() with JSON disabled used strategy %v", got.Strategy)
	}
}

func TestPosts_Deterministic(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Post
	}{
		{
			name: "tagged",
			raw:  twoRecords,
			want: Posts(twoRecords),
		},
		{
			name: "json title and heading",
			raw:  `[{"title": "From title", "heading": "From heading", "content": "some body text"}]`,
			want: []Post{{Title: "From title", Angle: DefaultAngle, VisualKeyword: DefaultVisualKeyword, Body: "some body text"}},
		},
		{
			name: "json content and text",
			raw:  `[{"title": "A", "text": "from text key", "content": "from content key"}]`,
			want: []Post{{Title: "A", Angle: DefaultAngle, VisualKeyword: DefaultVisualKeyword, Body: "from content key"}},
		},
		{
			name: "json wrapper keys differing in case",
			raw:  `{"posts": [{"title": "Lower"}], "Posts": [{"title": "Upper"}]}`,
			want: []Post{{Title: "Upper", Angle: DefaultAngle, VisualKeyword: DefaultVisualKeyword, Body: `{"title":"Upper"}`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 50 {
				if got := Posts(tt.raw); !reflect.DeepEqual(got, tt.want) {
					t.Fatalf("Posts() = %+v, want %+v", got, tt.want)
				}
			}
		})
	}
}

func TestPosts_DelimiterInProse(t *testing.T) {
	raw := "$$$TITLE$$$ A post about the post divider feature\n$$$CONTENT$$$ We discuss the post-divider in detail here ok"
	want := []Post{{
		Title:         "A post about the post divider feature",
		Angle:         DefaultAngle,
		VisualKeyword: DefaultVisualKeyword,
		Body:          "We discuss the post-divider in detail here ok",
	}}
	if got := Posts(raw); !reflect.DeepEqual(got, want) {
		t.Errorf("Posts() = %+v, want %+v", got, want)
	}
}

func TestPosts_StarredDelimiterSurvivesNormalize(t *testing.T) {
	got := Posts(recordA + "\n*** POST DIVIDER ***\n" + recordB)
	if len(got) != 2 || got[0].Title != "First" || got[1].Title != "Second" {
		t.Errorf("Posts() = %+v, want the First and Second records", got)
	}
}

func TestPosts_OrderPreserved(t *testing.T) {
	raw := strings.Join([]string{recordA, recordB, recordC}, "\n---POST_DIVIDER---\n")
	got := Posts(raw)
	titles := make([]string, 0, len(got))
	for _, p := range got {
		titles = append(titles, p.Title)
	}
	if want := []string{"First", "Second", "Third"}; !reflect.DeepEqual(titles, want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}
}

func TestPosts_NeverEmptyFields(t *testing.T) {
	inputs := []string{
		twoRecords,
		"$$$TITLE$$$\n$$$ANGLE$$$\n$$$IMAGE_KEYWORD$$$\n$$$CONTENT$$$\n---POST_DIVIDER---\nanother chunk that is long enough",
		"标题：\n正文：\n and a bit of text to pass the threshold",
		"$$$CONTENT$$$ $$$CONTENT$$$ $$$CONTENT$$$ $$$CONTENT$$$",
	}
	for _, raw := range inputs {
		for i, p := range Posts(raw) {
			if p.Title == "" || p.Angle == "" || p.VisualKeyword == "" || p.Body == "" {
				t.Errorf("Posts(%q)[%d] has an empty field: %+v", raw, i, p)
			}
		}
	}
}

func TestParser_Options(t *testing.T) {
	p := New(
		WithDefault(RoleTitle, "Untitled"),
		WithDefault(RoleAngle, "  "),
		WithDefault(RoleBody, "ignored"),
		WithMinChunkLength(5),
	)
	got := p.Parse("$$$CONTENT$$$ Short")
	if len(got) != 1 {
		t.Fatalf("Parse() returned %d posts, want 1", len(got))
	}
	if got[0].Title != "Untitled" {
		t.Errorf("Title = %q, want %q", got[0].Title, "Untitled")
	}
	if got[0].Angle != DefaultAngle {
		t.Errorf("Angle = %q, want %q (blank default ignored)", got[0].Angle, DefaultAngle)
	}
	if got[0].Body != "Short" {
		t.Errorf("Body = %q, want %q", got[0].Body, "Short")
	}
}

func TestParser_First(t *testing.T) {
	p := New()

	post, ok := p.First(twoRecords)
	if !ok || post.Title != "A" {
		t.Errorf("First() = %+v, %v, want title A, true", post, ok)
	}

	post, ok = p.First("nope")
	if ok || post != (Post{}) {
		t.Errorf("First(filler) = %+v, %v, want zero, false", post, ok)
	}
}

func TestParseResult(t *testing.T) {
	res := New().ParseResult(context.Background(), "Here you go:\n---POST_DIVIDER---\n"+twoRecords)

	if res.Strategy != StrategyDelimiter {
		t.Errorf("Strategy = %v, want %v", res.Strategy, StrategyDelimiter)
	}
	if res.Chunks != 2 || res.Discarded != 1 {
		t.Errorf("Chunks, Discarded = %d, %d, want 2, 1", res.Chunks, res.Discarded)
	}
	if len(res.Fields) != len(res.Posts) {
		t.Fatalf("len(Fields) = %d, want %d", len(res.Fields), len(res.Posts))
	}
	if !res.Complete(0) {
		t.Errorf("Complete(0) = false, want true: %v", res.Fields[0])
	}
	if res.Complete(1) || res.Complete(5) {
		t.Error("Complete() = true for a partial or missing post")
	}
	if got := res.Fields[1][RoleAngle]; got != SourceDefault {
		t.Errorf("Fields[1][angle] = %v, want %v", got, SourceDefault)
	}
	if res.Incomplete() != 1 || res.Defaults() != 2 {
		t.Errorf("Incomplete(), Defaults() = %d, %d, want 1, 2", res.Incomplete(), res.Defaults())
	}
}

func TestParseResult_Observer(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(slogobs.WithOutput(&buf), slogobs.WithFormat(slogobs.FormatCompact), slogobs.WithLevel(slog.LevelDebug))
	p := New(WithObserver(observer))

	p.Parse(twoRecords)
	p.Parse("nothing useful")

	if got := observer.CounterValue(observability.MetricParseCount); got != 2 {
		t.Errorf("%s = %d, want 2", observability.MetricParseCount, got)
	}
	if got := observer.CounterValue(observability.MetricParsePosts); got != 2 {
		t.Errorf("%s = %d, want 2", observability.MetricParsePosts, got)
	}
	if got := observer.CounterValue(observability.MetricParseDefaults); got != 2 {
		t.Errorf("%s = %d, want 2", observability.MetricParseDefaults, got)
	}
	if got := observer.CounterValue(observability.MetricParseEmpty); got != 1 {
		t.Errorf("%s = %d, want 1", observability.MetricParseEmpty, got)
	}

	out := buf.String()
	for _, want := range []string{"parse finished", "no posts recovered from model output", observability.SpanParsePosts} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestParseResult_ObserverFromContext(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(slogobs.WithOutput(&buf), slogobs.WithLevel(slog.LevelWarn))
	ctx := observability.ContextWithObserver(context.Background(), observer)

	New().ParseResult(ctx, "short")

	if got := observer.CounterValue(observability.MetricParseEmpty); got != 1 {
		t.Errorf("%s = %d, want 1", observability.MetricParseEmpty, got)
	}
	if !strings.Contains(buf.String(), "no posts recovered") {
		t.Errorf("warning not logged: %q", buf.String())
	}
}

func TestParser_Concurrent(t *testing.T) {
	p := New()
	want := p.Parse(twoRecords)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := p.Parse(twoRecords); !reflect.DeepEqual(got, want) {
				errs <- "concurrent Parse() returned a different result"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestStrategyAndSourceNames(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{StrategyNone.String(), "none"},
		{StrategyDelimiter.String(), "delimiter"},
		{StrategyTitleResplit.String(), "title_resplit"},
		{StrategyJSON.String(), "json"},
		{SourceDefault.String(), "default"},
		{SourceTag.String(), "tag"},
		{SourceAlias.String(), "alias"},
		{SourceJSON.String(), "json"},
		{RoleVisualKeyword.String(), "visual_keyword"},
		{Role(9).String(), "role(9)"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParser_TagAndDelimiter(t *testing.T) {
	p := New(WithTagNames(RoleBody, "text", "body"), WithDelimiter(" <<<NEXT>>> "))

	tests := []struct {
		role Role
		want string
	}{
		{RoleTitle, "$$$TITLE$$$"},
		{RoleVisualKeyword, "$$$IMAGE_KEYWORD$$$"},
		{RoleBody, "$$$TEXT$$$"},
		{Role(-1), ""},
	}
	for _, tt := range tests {
		if got := p.Tag(tt.role); got != tt.want {
			t.Errorf("Tag(%v) = %q, want %q", tt.role, got, tt.want)
		}
	}
	if got := p.Delimiter(); got != "<<<NEXT>>>" {
		t.Errorf("Delimiter() = %q, want %q", got, "<<<NEXT>>>")
	}
}
