package position

import (
	"strconv"
	"strings"
)

var kanjiDigits = []string{"〇", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

var kanjiUnits = []struct {
	value int
	name  string
}{
	{1000, "千"},
	{100, "百"},
	{10, "十"},
}

// iroha order used for first-level sub-items (イ, ロ, ハ, ...).
var iroha = []rune("イロハニホヘトチリヌルヲワカヨタレソツネナラムウヰノオクヤマケフコエテアサキユメミシヱヒモセス")

// Kanji renders n the way statutes write numbers: 十一, 二十八, 百五, 千九百.
func Kanji(n int) string {
	if n <= 0 {
		return kanjiDigits[0]
	}
	var builder strings.Builder
	if n >= 10000 {
		builder.WriteString(Kanji(n/10000) + "万")
		n %= 10000
	}
	for _, unit := range kanjiUnits {
		count := n / unit.value
		if count > 1 {
			builder.WriteString(kanjiDigits[count])
		}
		if count > 0 {
			builder.WriteString(unit.name)
		}
		n %= unit.value
	}
	if n > 0 {
		builder.WriteString(kanjiDigits[n])
	}
	return builder.String()
}

// Label renders the position as it would be cited in statute text, e.g.
// "附則第三条の二第二項第一号イ". The paragraph is omitted when unset.
func (p Position) Label() string {
	var builder strings.Builder
	if p.supplTitle != nil {
		builder.WriteString("附則")
	}
	if len(p.article) > 0 {
		builder.WriteString(numberLabel(p.article, "条"))
	}
	if len(p.paragraph) > 0 {
		builder.WriteString(numberLabel(p.paragraph, "項"))
	}
	if len(p.item) > 0 {
		builder.WriteString(numberLabel(p.item, "号"))
	}
	if p.subItem != nil {
		builder.WriteString(subItemLabel(*p.subItem))
	}
	return builder.String()
}

// numberLabel renders [3 2] with unit 条 as 第三条の二.
func numberLabel(numbers []int, unit string) string {
	label := "第" + Kanji(numbers[0]) + unit
	for _, branch := range numbers[1:] {
		label += "の" + Kanji(branch)
	}
	return label
}

func subItemLabel(sub SubItem) string {
	if len(sub.Number) == 0 {
		return ""
	}
	var head string
	first := sub.Number[0]
	if sub.Depth == 1 && first >= 1 && first <= len(iroha) {
		head = string(iroha[first-1])
	} else {
		head = "（" + strconv.Itoa(first) + "）"
	}
	for _, branch := range sub.Number[1:] {
		head += "の" + Kanji(branch)
	}
	return head
}
