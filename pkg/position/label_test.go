package position

import "testing"

func TestKanji(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "〇"},
		{1, "一"},
		{10, "十"},
		{13, "十三"},
		{28, "二十八"},
		{100, "百"},
		{105, "百五"},
		{1000, "千"},
		{1947, "千九百四十七"},
		{2024, "二千二十四"},
		{10000, "一万"},
	}

	for _, tc := range tests {
		if got := Kanji(tc.n); got != tc.want {
			t.Errorf("Kanji(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestLabel(t *testing.T) {
	p := mustArticle(t, New(), "3_2")
	if got := p.Label(); got != "第三条の二" {
		t.Errorf("Label() = %q, want 第三条の二", got)
	}

	p, _ = p.WithParagraph("2")
	p, _ = p.WithItem("1")
	p, _ = p.WithSubItem(1, "3")
	if got := p.Label(); got != "第三条の二第二項第一号ハ" {
		t.Errorf("Label() = %q, want 第三条の二第二項第一号ハ", got)
	}

	p, _ = p.WithSubItem(2, "4")
	if got := p.Label(); got != "第三条の二第二項第一号（4）" {
		t.Errorf("Label() = %q, want 第三条の二第二項第一号（4）", got)
	}

	suppl := mustArticle(t, New().WithSupplProvisionTitle("附則"), "5")
	if got := suppl.Label(); got != "附則第五条" {
		t.Errorf("Label() = %q, want 附則第五条", got)
	}

	if got := New().Label(); got != "" {
		t.Errorf("Label() of empty position = %q", got)
	}
}
