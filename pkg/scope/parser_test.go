package scope

import (
	"encoding/json"
	"errors"
	"testing"
)

func assertNotes(t *testing.T, input string, got, want []Note) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Parse(%q) returned %d notes %v, want %d %v", input, len(got), got, len(want), want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("Parse(%q)[%d] = %s, want %s", input, i, got[i], want[i])
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Note
	}{
		{"this article", "この条", []Note{Single(This(LevelArticle))}},
		{"this paragraph with 本", "本項", []Note{Single(This(LevelParagraph))}},
		{"next paragraph", "次項", []Note{Single(Next(LevelParagraph))}},
		{"next item", "次号", []Note{Single(Next(LevelItem))}},
		{"this drafting note", "この記載要領", []Note{Single(This(LevelDraftingNote))}},
		{"this section", "この節", []Note{Single(This(LevelSubItem))}},
		{"plain link", "第七条の二", []Note{Single(PlainLink("第七条の二"))}},
		{"iroha link", "イ", []Note{Single(PlainLink("イ"))}},
		{"nested link", "第三項第一号", []Note{Single(PlainLink("第三項第一号"))}},
		{"supplementary link", "附則第三条", []Note{Single(SupplementaryLink("第三条"))}},
		{"supplementary link with の", "附則の第三条", []Note{Single(SupplementaryLink("第三条"))}},
		{"whole supplementary block", "附則", []Note{Single(SupplementaryLink(""))}},
		{
			"range of articles",
			"第五条から第七条まで",
			[]Note{Range(PlainLink("第五条"), PlainLink("第七条"))},
		},
		{
			"supplementary range",
			"附則の第三条から第五条まで",
			[]Note{Range(SupplementaryLink("第三条"), PlainLink("第五条"))},
		},
		{
			"list with comma",
			"この条、次条",
			[]Note{Single(This(LevelArticle)), Single(Next(LevelArticle))},
		},
		{
			"list with 及び",
			"第二条及び第四条",
			[]Note{Single(PlainLink("第二条")), Single(PlainLink("第四条"))},
		},
		{
			"range and list",
			"第一項から第三項まで並びに次項",
			[]Note{Range(PlainLink("第一項"), PlainLink("第三項")), Single(Next(LevelParagraph))},
		},
		{
			"iroha range",
			"イからハまで",
			[]Note{Range(PlainLink("イ"), PlainLink("ハ"))},
		},
		{
			"this article then paragraph",
			"この条第二項",
			[]Note{Single(This(LevelArticle)), Single(PlainLink("第二項"))},
		},
		{
			"next paragraph then item",
			"次項第一号",
			[]Note{Single(Next(LevelParagraph)), Single(PlainLink("第一号"))},
		},
		{
			"parenthetical exception",
			"この条（第三項を除く。）",
			[]Note{Single(This(LevelArticle)).WithRemark("第三項を除く。")},
		},
		{
			"delimiter inside parenthetical",
			"第五条から第七条まで（第六条、第六条の二を除く。）及び次条",
			[]Note{
				Range(PlainLink("第五条"), PlainLink("第七条")).WithRemark("第六条、第六条の二を除く。"),
				Single(Next(LevelArticle)),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tc.input, err)
			}
			assertNotes(t, tc.input, got, tc.want)
		})
	}
}

func TestParse_Unrecognized(t *testing.T) {
	tests := []struct {
		input   string
		segment string
	}{
		{"", ""},
		{"前条", "前条"},
		{"この法律", "この法律"},
		{"第五条、", ""},
		{"附則別表", "附則別表"},
		{"第一条から第二条", "第一条から第二条"},
		{"本条の規定", "本条の規定"},
		{"この条、次項の規定", "次項の規定"},
		{"この条第二項から次項まで", "この条第二項から次項まで"},
	}

	for _, tc := range tests {
		_, err := Parse(tc.input)
		var unrecognized *UnrecognizedScopeError
		if !errors.As(err, &unrecognized) {
			t.Errorf("Parse(%q) error = %v, want UnrecognizedScopeError", tc.input, err)
			continue
		}
		if unrecognized.Segment != tc.segment {
			t.Errorf("Parse(%q) failing segment = %q, want %q", tc.input, unrecognized.Segment, tc.segment)
		}
		if unrecognized.Text != tc.input {
			t.Errorf("Parse(%q) error text = %q", tc.input, unrecognized.Text)
		}
	}
}

func TestParseReference(t *testing.T) {
	ref, err := NewParser().ParseReference("次条")
	if err != nil {
		t.Fatalf("ParseReference failed: %v", err)
	}
	if ref != Next(LevelArticle) {
		t.Errorf("ParseReference(次条) = %s", ref)
	}
}

func TestNoteJSON(t *testing.T) {
	data, err := json.Marshal([]Note{
		Single(This(LevelArticle)),
		Range(PlainLink("第五条"), PlainLink("第七条")),
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `[{"kind":"single","start":{"kind":"this","level":"article"}},` +
		`{"kind":"range","start":{"kind":"link","locator":"第五条"},"end":{"kind":"link","locator":"第七条"}}]`
	if string(data) != want {
		t.Errorf("Marshal = %s\nwant %s", data, want)
	}
}

func TestNoteRemark(t *testing.T) {
	plain := Single(This(LevelArticle))
	excepted := plain.WithRemark("第三項を除く。")
	if plain.Equal(excepted) {
		t.Error("notes differing only in remark compared equal")
	}
	if got := excepted.String(); got != "single(this(article))（第三項を除く。）" {
		t.Errorf("String() = %q", got)
	}

	data, err := json.Marshal(excepted)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"kind":"single","start":{"kind":"this","level":"article"},"remark":"第三項を除く。"}`
	if string(data) != want {
		t.Errorf("Marshal = %s\nwant %s", data, want)
	}
}
