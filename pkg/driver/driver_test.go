package driver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/lawabbrev/pkg/lawxml"
	"github.com/coolbeans/lawabbrev/pkg/scope"
)

const (
	definitionText = "地方自治法（昭和二十二年法律第六十七号。以下この条において「自治法」という。）の規定による。"
	tableText      = "（平成十五年法律第五十七号。以下「表法」という。）"
)

func article(num string) lawxml.Event {
	return lawxml.Event{Kind: lawxml.EventArticle, Num: num}
}

func paragraph(num string) lawxml.Event {
	return lawxml.Event{Kind: lawxml.EventParagraph, Num: num}
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"citation", "generic", "both"} {
		mode, err := ParseMode(name)
		require.NoError(t, err)
		assert.Equal(t, Mode(name), mode)
	}

	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeCitation, mode)

	_, err = ParseMode("everything")
	assert.Error(t, err)
}

func TestTraverse_StampsPosition(t *testing.T) {
	stream := lawxml.NewSliceStream(
		lawxml.Text("この法律の目的", article("1"), paragraph("1")),
		lawxml.Text(definitionText, article("3_2"), paragraph("2")),
	)

	result, err := New(Options{}).Traverse(context.Background(), "平成三十年法律第一号", stream)
	require.NoError(t, err)

	require.Len(t, result.Citations, 1)
	record := result.Citations[0]
	assert.Equal(t, "昭和二十二年法律第六十七号", record.CitationNumber)
	assert.Equal(t, "自治法", record.Name)
	assert.Equal(t, "この条", record.ScopeNote)
	assert.Equal(t, "平成三十年法律第一号", record.LawNumber)
	assert.Equal(t, []int{3, 2}, record.Position.Article())
	assert.Equal(t, []int{2}, record.Position.Paragraph())
	assert.Equal(t, 2, result.Fragments)
	assert.Empty(t, result.Generic, "generic extractor should not run in citation mode")
}

func TestTraverse_SkipsTables(t *testing.T) {
	stream := lawxml.NewSliceStream(
		lawxml.Table(tableText, article("1")),
		lawxml.Table("（平成十五年法律第五十七号。以下第五条において「表令」という。）"),
	)

	result, err := New(Options{Mode: ModeBoth}).Traverse(context.Background(), "", stream)
	require.NoError(t, err)

	assert.Empty(t, result.Citations)
	assert.Empty(t, result.Generic)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.Tables)
}

func TestTraverse_TableEventsStillMovePosition(t *testing.T) {
	stream := lawxml.NewSliceStream(
		lawxml.Table(tableText, article("7")),
		lawxml.Text(definitionText),
	)

	result, err := New(Options{}).Traverse(context.Background(), "", stream)
	require.NoError(t, err)
	require.Len(t, result.Citations, 1)
	assert.Equal(t, []int{7}, result.Citations[0].Position.Article())
}

func TestTraverse_MalformedNumberKeepsLastGoodPosition(t *testing.T) {
	stream := lawxml.NewSliceStream(
		lawxml.Text("前文", article("4"), paragraph("1")),
		lawxml.Text(definitionText, paragraph("二")),
	)

	result, err := New(Options{}).Traverse(context.Background(), "", stream)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, StagePosition, result.Errors[0].Stage)
	assert.Contains(t, result.Errors[0].Message, "二")

	require.Len(t, result.Citations, 1)
	assert.Equal(t, []int{4}, result.Citations[0].Position.Article())
	assert.Equal(t, []int{1}, result.Citations[0].Position.Paragraph())
}

func TestTraverse_GenericMode(t *testing.T) {
	stream := lawxml.NewSliceStream(
		lawxml.Text("旧法第二条。以下前条において「旧法」という。", article("2")),
		lawxml.Text(definitionText, article("3")),
	)

	result, err := New(Options{Mode: ModeGeneric}).Traverse(context.Background(), "", stream)
	require.NoError(t, err)

	assert.Empty(t, result.Citations)
	require.Len(t, result.Generic, 1)
	assert.Equal(t, "自治法", result.Generic[0].Name)
	assert.Equal(t, "第三条", result.Generic[0].ArticleLabel)
	assert.True(t, result.Generic[0].ScopeNotes[0].Equal(scope.Single(scope.This(scope.LevelArticle))))

	require.Len(t, result.Errors, 1)
	assert.Equal(t, StageScope, result.Errors[0].Stage)
	assert.Equal(t, []int{2}, result.Errors[0].Position.Article())
}

func TestTraverse_ParseCitationScopes(t *testing.T) {
	stream := lawxml.NewSliceStream(
		lawxml.Text("地方自治法（昭和二十二年法律第六十七号。以下前条において「自治法」という。）", article("1")),
	)

	result, err := New(Options{ParseCitationScopes: true}).Traverse(context.Background(), "", stream)
	require.NoError(t, err)

	require.Len(t, result.Citations, 1, "the record is kept even when its qualifier does not parse")
	require.Len(t, result.Errors, 1)
	assert.Equal(t, StageScope, result.Errors[0].Stage)
}

func TestTraverse_LawNumberFromDecoder(t *testing.T) {
	xml := `<Law><LawNum>平成二十八年法律第十三号</LawNum><LawBody><MainProvision>` +
		`<Article Num="1"><Paragraph Num="1"><ParagraphSentence><Sentence>` + definitionText +
		`</Sentence></ParagraphSentence></Paragraph></Article></MainProvision></LawBody></Law>`

	result, err := New(Options{}).Traverse(context.Background(), "", lawxml.NewDecoder(strings.NewReader(xml)))
	require.NoError(t, err)

	assert.Equal(t, "平成二十八年法律第十三号", result.LawNumber)
	require.Len(t, result.Citations, 1)
	assert.Equal(t, "平成二十八年法律第十三号", result.Citations[0].LawNumber)
}

func TestTraverse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(Options{}).Traverse(ctx, "", lawxml.NewSliceStream(lawxml.Text(definitionText)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Citations)
}

type failingStream struct {
	served bool
}

func (s *failingStream) Next() (lawxml.Fragment, error) {
	if !s.served {
		s.served = true
		return lawxml.Text(definitionText, article("1")), nil
	}
	return lawxml.Fragment{}, errors.New("disk on fire")
}

func TestTraverse_StreamErrorKeepsPartialResult(t *testing.T) {
	result, err := New(Options{}).Traverse(context.Background(), "", &failingStream{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Len(t, result.Citations, 1)
}
