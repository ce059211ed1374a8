package openalex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconstructAbstract(t *testing.T) {
	inverted := map[string][]int{
		"the":   {0, 3},
		"quick": {1},
		"fox":   {2},
		"lazy":  {4},
		"dog":   {5},
	}

	got := ReconstructAbstract(inverted)

	assert.Equal(t, "the quick fox the lazy dog", got)
}

func TestReconstructAbstract_Empty(t *testing.T) {
	assert.Equal(t, "", ReconstructAbstract(nil))
	assert.Equal(t, "", ReconstructAbstract(map[string][]int{}))
}

// usableAbstract 生成一段词数合规、带句读的摘要文本
func usableAbstract(words int) string {
	sentence := "We propose a novel method for discovering latent structure in large corpora."
	var b strings.Builder
	for len(strings.Fields(b.String())) < words {
		b.WriteString(sentence)
		b.WriteString(" ")
	}
	fields := strings.Fields(b.String())[:words]
	return strings.Join(fields, " ") + "."
}

func TestAbstractUsable(t *testing.T) {
	assert.True(t, AbstractUsable(usableAbstract(120)))
}

func TestAbstractUsable_RejectsShortAndLong(t *testing.T) {
	assert.False(t, AbstractUsable("too short to be an abstract."))
	assert.False(t, AbstractUsable(usableAbstract(600)))
	assert.False(t, AbstractUsable(""))
	assert.False(t, AbstractUsable("   "))
}

func TestAbstractUsable_RejectsBoilerplate(t *testing.T) {
	text := usableAbstract(100) + " Previous Article Next Article Export Citation."
	assert.False(t, AbstractUsable(text))
}

func TestAbstractUsable_RejectsReferenceFragments(t *testing.T) {
	text := usableAbstract(80) + " [1] [2] [3] [4] [5] [6] further reading."
	assert.False(t, AbstractUsable(text))
}

func TestAbstractUsable_RejectsKeywordSoup(t *testing.T) {
	words := make([]string, 100)
	for i := range words {
		words[i] = "keyword"
	}
	soup := strings.Join(words, " ")
	assert.False(t, AbstractUsable(soup))
	// 两个句读仍不足以视为成文摘要
	assert.False(t, AbstractUsable(soup+". And one more. "))
}

func TestCountSentenceMarks(t *testing.T) {
	assert.Equal(t, 3, countSentenceMarks("One. Two! Three?"))
	assert.Equal(t, 0, countSentenceMarks("no terminal punctuation here"))
}

func TestCountBracketCitations(t *testing.T) {
	assert.Equal(t, 3, countBracketCitations("see [1], [22] and [333]"))
	assert.Equal(t, 0, countBracketCitations("array[i] and [abc] are not citations"))
	assert.Equal(t, 0, countBracketCitations("no brackets at all"))
}
