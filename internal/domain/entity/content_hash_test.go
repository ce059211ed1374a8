package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashOf_Deterministic(t *testing.T) {
	a := ContentHashOf("W123", "Attention Is All You Need", "abstract text", "Vaswani,Shazeer", "2017-06-12", "https://example.org/paper", "https://example.org/paper.pdf")
	b := ContentHashOf("W123", "Attention Is All You Need", "abstract text", "Vaswani,Shazeer", "2017-06-12", "https://example.org/paper", "https://example.org/paper.pdf")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestContentHashOf_FieldChangeChangesHash(t *testing.T) {
	base := []string{"W123", "title", "abstract", "authors", "2020-01-01", "landing", "pdf"}
	baseHash := ContentHashOf(base[0], base[1], base[2], base[3], base[4], base[5], base[6])

	for i := range base {
		mutated := make([]string, len(base))
		copy(mutated, base)
		mutated[i] = mutated[i] + "x"
		got := ContentHashOf(mutated[0], mutated[1], mutated[2], mutated[3], mutated[4], mutated[5], mutated[6])
		assert.NotEqual(t, baseHash, got, "field %d should affect the hash", i)
	}
}

func TestContentHashOf_DelimiterPreventsAmbiguity(t *testing.T) {
	// 相邻字段内容移位不能产生相同拼接结果
	a := ContentHashOf("ab", "c", "", "", "", "", "")
	b := ContentHashOf("a", "bc", "", "", "", "", "")
	assert.NotEqual(t, a, b)
}

func TestContentHashOf_EmptyFields(t *testing.T) {
	got := ContentHashOf("", "", "", "", "", "", "")
	assert.Len(t, got, 64)
}

func TestPaper_ComputeContentHash(t *testing.T) {
	p := &Paper{
		ExternalID:      "https://openalex.org/W2741809807",
		Title:           "Deep Residual Learning",
		Abstract:        "We present a residual learning framework.",
		Authors:         []string{"He", "Zhang"},
		PublicationDate: time.Date(2015, 12, 10, 0, 0, 0, 0, time.UTC),
		LandingURL:      "https://example.org/resnet",
		PDFURL:          "https://example.org/resnet.pdf",
	}

	hash := p.ComputeContentHash()
	require.NotEmpty(t, hash)
	assert.Equal(t, hash, p.ContentHash)

	want := ContentHashOf(
		p.ExternalID, p.Title, p.Abstract, "He,Zhang", "2015-12-10", p.LandingURL, p.PDFURL,
	)
	assert.Equal(t, want, hash)

	// 缺失日期退化为空串而非崩溃
	p.PublicationDate = time.Time{}
	assert.NotEqual(t, hash, p.ComputeContentHash())
}

func TestPaper_Valid(t *testing.T) {
	assert.False(t, (&Paper{}).Valid())
	assert.False(t, (&Paper{ExternalID: "W1"}).Valid())
	assert.False(t, (&Paper{Title: "t"}).Valid())
	assert.False(t, (&Paper{ExternalID: "  ", Title: "t"}).Valid())
	assert.True(t, (&Paper{ExternalID: "W1", Title: "t"}).Valid())
}

func TestPaper_EmbeddingText(t *testing.T) {
	p := &Paper{Title: "A Title", Abstract: "An abstract."}
	assert.Equal(t, "A Title\nAn abstract.", p.EmbeddingText())

	p.Abstract = NoAbstractSentinel
	assert.Equal(t, "A Title", p.EmbeddingText())
}
