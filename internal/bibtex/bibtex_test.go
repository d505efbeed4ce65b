package bibtex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleBib = `
@article{doe2024streams,
  title = {Streaming Joins at Scale},
  author = {Doe, Jane and Smith, Alex},
  journal = {VLDB Journal},
  year = {2024},
  doi = {10.1000/vldb.2024},
  pdf = {papers/streams.pdf},
  highlight = {true},
}

@inproceedings{doe2022windows,
  title = {{Window Semantics Revisited}},
  author = {Jane Doe},
  booktitle = {Proceedings of the 48th International Conference on Very Large Data Bases},
  year = {2022},
  code = {https://github.com/janedoe/windows},
}

@misc{doe2021note,
  title = {A Note on Watermarks},
  author = {Doe, Jane},
  howpublished = {arXiv preprint},
  year = {2021},
  arxiv = {2101.00001},
}
`

func TestParse_ExtractsNormalizedPublications(t *testing.T) {
	res := Parse([]byte(sampleBib), Options{})
	require.Empty(t, res.Issues)
	require.Len(t, res.Publications, 3)

	article := res.Publications[0]
	require.Equal(t, "doe2024streams", article.Key)
	require.Equal(t, "article", article.Type)
	require.Equal(t, "Streaming Joins at Scale", article.Title)
	require.Equal(t, []string{"Jane Doe", "Alex Smith"}, article.Authors)
	require.Equal(t, "VLDB Journal", article.Venue)
	require.Equal(t, 2024, article.Year)
	require.True(t, article.Highlight)

	proc := res.Publications[1]
	require.Equal(t, "Window Semantics Revisited", proc.Title)
	require.Equal(t, "the 48th International Conference on Very Large Data Bases", proc.Venue)

	misc := res.Publications[2]
	require.Equal(t, "arXiv preprint", misc.Venue)
}

func TestParse_LinkExtraction(t *testing.T) {
	res := Parse([]byte(sampleBib), Options{})
	require.Len(t, res.Publications, 3)

	article := res.Publications[0]
	require.Equal(t, []Link{
		{Label: "Paper", Ref: "https://doi.org/10.1000/vldb.2024"},
		{Label: "PDF", Ref: "papers/streams.pdf"},
	}, article.Links)

	proc := res.Publications[1]
	require.Equal(t, []Link{
		{Label: "Code", Ref: "https://github.com/janedoe/windows"},
	}, proc.Links)

	misc := res.Publications[2]
	require.Equal(t, []Link{
		{Label: "arXiv", Ref: "https://arxiv.org/abs/2101.00001"},
	}, misc.Links)
}

func TestParse_CleanCitationExcludesWebsiteFields(t *testing.T) {
	res := Parse([]byte(sampleBib), Options{})
	require.Len(t, res.Publications, 3)

	raw := res.Publications[0].Raw
	require.Contains(t, raw, "@article{doe2024streams,")
	require.Contains(t, raw, "journal = {VLDB Journal}")
	require.Contains(t, raw, "year = {2024}")
	require.NotContains(t, raw, "pdf")
	require.NotContains(t, raw, "highlight")
}

func TestParse_NonNumericYearSkipsEntryOnly(t *testing.T) {
	src := `
@article{bad2020,
  title = {No Year Here},
  author = {Doe, Jane},
  journal = {Nowhere},
  year = {forthcoming},
}

@article{good2020,
  title = {Has a Year},
  author = {Doe, Jane},
  journal = {Somewhere},
  year = {2020},
}
`
	res := Parse([]byte(src), Options{})
	require.Len(t, res.Publications, 1)
	require.Equal(t, "good2020", res.Publications[0].Key)

	require.Len(t, res.Issues, 1)
	require.True(t, res.Issues[0].IsWarning())
	require.Contains(t, res.Issues[0].Error(), "year")
}

func TestParse_MissingTitleIsReported(t *testing.T) {
	src := `
@article{untitled2020,
  author = {Doe, Jane},
  journal = {Somewhere},
  year = {2020},
}
`
	res := Parse([]byte(src), Options{})
	require.Empty(t, res.Publications)
	require.Len(t, res.Issues, 1)
	require.Contains(t, res.Issues[0].Error(), "title")
}

func TestParse_OrderPreservedWithinFile(t *testing.T) {
	src := `
@article{first2023, title = {First}, author = {Doe, Jane}, journal = {J}, year = {2023}}
@article{second2023, title = {Second}, author = {Doe, Jane}, journal = {J}, year = {2023}}
@article{third2023, title = {Third}, author = {Doe, Jane}, journal = {J}, year = {2023}}
`
	res := Parse([]byte(src), Options{})
	require.Len(t, res.Publications, 3)
	require.Equal(t, "First", res.Publications[0].Title)
	require.Equal(t, "Second", res.Publications[1].Title)
	require.Equal(t, "Third", res.Publications[2].Title)
}

func TestParse_HighlightAuthorMatching(t *testing.T) {
	res := Parse([]byte(sampleBib), Options{HighlightAuthors: []string{"J. Doe", "jane doe"}})
	require.Len(t, res.Publications, 3)

	article := res.Publications[0]
	require.Equal(t, []bool{true, false}, article.AuthorHighlighted)
	require.True(t, article.HasHighlightAuthor())
}

func TestParse_HighlightMatchingIsCaseInsensitive(t *testing.T) {
	src := `
@article{x2020, title = {T}, author = {DOE, JANE}, journal = {J}, year = {2020}}
`
	res := Parse([]byte(src), Options{HighlightAuthors: []string{"jane doe"}})
	require.Len(t, res.Publications, 1)
	require.True(t, res.Publications[0].HasHighlightAuthor())
}

func TestParse_HighlightMatchingFoldsDiacritics(t *testing.T) {
	src := `
@article{m2020, title = {T}, author = {Müller, Jörg}, journal = {J}, year = {2020}}
`
	res := Parse([]byte(src), Options{HighlightAuthors: []string{"Jorg Muller"}})
	require.Len(t, res.Publications, 1)
	require.True(t, res.Publications[0].HasHighlightAuthor())
}

func TestSplitEntries_BalancedBraces(t *testing.T) {
	chunks := splitEntries(sampleBib)
	require.Len(t, chunks, 3)
	require.Equal(t, "doe2024streams", chunks[0].key)
	require.Equal(t, "doe2022windows", chunks[1].key)
	require.Equal(t, "doe2021note", chunks[2].key)
}

func TestFormatAuthorName(t *testing.T) {
	require.Equal(t, "Jane Doe", formatAuthorName("Doe, Jane"))
	require.Equal(t, "Jane Doe", formatAuthorName("Jane Doe"))
	require.Equal(t, "Doe", formatAuthorName("Doe,"))
}
