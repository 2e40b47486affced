package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/lawabbrev/pkg/abbrev"
	"github.com/coolbeans/lawabbrev/pkg/driver"
	"github.com/coolbeans/lawabbrev/pkg/position"
	"github.com/coolbeans/lawabbrev/pkg/scope"
)

func mustPosition(t *testing.T, article, paragraph string) position.Position {
	t.Helper()
	pos, err := position.New().WithArticle(article)
	require.NoError(t, err)
	if paragraph != "" {
		pos, err = pos.WithParagraph(paragraph)
		require.NoError(t, err)
	}
	return pos
}

func sampleResult(t *testing.T) *driver.Result {
	t.Helper()
	supplementary, err := position.New().WithSupplProvisionTitle("附則").WithArticle("2")
	require.NoError(t, err)

	return &driver.Result{
		LawNumber: "平成二十八年法律第十三号",
		Citations: []abbrev.CitationRecord{
			{
				CitationNumber: "平成二十八年法律第十三号",
				Name:           "平成二十八年地方税法等改正法",
				ScopeNote:      "イ",
				Position:       mustPosition(t, "3_2", "2"),
				LawNumber:      "平成二十八年法律第十三号",
			},
			{
				CitationNumber: "昭和二十二年法律第六十七号",
				Name:           "自治法",
				Position:       supplementary,
				LawNumber:      "平成二十八年法律第十三号",
			},
		},
		Generic: []abbrev.GenericRecord{
			{
				Name:         "旧法",
				ScopeNotes:   []scope.Note{scope.Range(scope.PlainLink("第五条"), scope.PlainLink("第七条"))},
				Span:         abbrev.NewSpan(10, 16),
				ArticleLabel: "第三条",
			},
		},
		Errors: []driver.FragmentError{
			{
				LawNumber: "平成二十八年法律第十三号",
				Position:  mustPosition(t, "4", ""),
				Stage:     driver.StageScope,
				Text:      "以下前条において「旧令」という。",
				Message:   `unrecognized scope note "前条"`,
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{"": FormatJSON, "json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)

	assert.Equal(t, FormatYAML, FormatForPath("out/catalog.yml"))
	assert.Equal(t, FormatJSON, FormatForPath("out/catalog.json"))
}

func TestCatalog_AddAndQuery(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(sampleResult(t))
	catalog.Add(&driver.Result{LawNumber: "令和二年法律第一号"})
	catalog.Add(nil)

	assert.Equal(t, []string{"令和二年法律第一号", "平成二十八年法律第十三号"}, catalog.LawNumbers())
	assert.Equal(t, 2, catalog.Len())

	records := catalog.Records("平成二十八年法律第十三号")
	require.Len(t, records, 2)
	assert.Equal(t, "平成二十八年地方税法等改正法", records[0].Name)

	records[0].Name = "changed"
	assert.Equal(t, "平成二十八年地方税法等改正法", catalog.Records("平成二十八年法律第十三号")[0].Name)
	assert.Empty(t, catalog.Records("令和二年法律第一号"))
}

func TestCatalog_WriteAndLoad(t *testing.T) {
	for _, name := range []string{"catalog.json", "catalog.yaml"} {
		t.Run(name, func(t *testing.T) {
			catalog := NewCatalog()
			catalog.Add(sampleResult(t))

			path := filepath.Join(t.TempDir(), "out", name)
			require.NoError(t, catalog.WriteFile(path, FormatForPath(path)))

			loaded, err := LoadCatalog(path)
			require.NoError(t, err)

			want := catalog.Records("平成二十八年法律第十三号")
			got := loaded.Records("平成二十八年法律第十三号")
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].Name, got[i].Name)
				assert.Equal(t, want[i].ScopeNote, got[i].ScopeNote)
				assert.True(t, want[i].Position.Equal(got[i].Position), "position %d: %s != %s",
					i, want[i].Position, got[i].Position)
			}
		})
	}
}

func TestCatalog_JSONShape(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&driver.Result{
		LawNumber: "令和二年法律第一号",
		Citations: []abbrev.CitationRecord{{
			CitationNumber: "昭和二十二年法律第六十七号",
			Name:           "自治法",
			Position:       mustPosition(t, "1", ""),
			LawNumber:      "令和二年法律第一号",
		}},
	})

	data, err := catalog.Marshal(FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"令和二年法律第一号":[{
		"citation_number":"昭和二十二年法律第六十七号",
		"name":"自治法",
		"position":{"article":[1]},
		"law_number":"令和二年法律第一号"}]}`, string(data))
}

func TestLoadCatalog_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadCatalog(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = LoadCatalog(bad)
	assert.Error(t, err)
}

func TestErrorLog(t *testing.T) {
	log := NewErrorLog()
	log.Add(sampleResult(t))
	log.Add(&driver.Result{})
	require.Equal(t, 1, log.Len())

	path := filepath.Join(t.TempDir(), "errors.yaml")
	require.NoError(t, log.WriteFile(path, FormatYAML))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stage: scope")
	assert.Contains(t, string(data), "前条")
}
