// Package openalex 提供 OpenAlex 文献元数据检索实现
package openalex

import (
	"sort"
	"strings"
)

// boilerplateMarkers 出版商页面残留文本的特征词（小写匹配）
var boilerplateMarkers = []string{
	"previous article",
	"next article",
	"crossref",
	"doi.org",
	"export citation",
	"all rights reserved",
	"cookie",
}

// ReconstructAbstract 将 OpenAlex 的倒排索引摘要还原为纯文本
// 倒排索引把每个词映射到它出现的位置列表，按位置排序即可还原。
func ReconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// AbstractUsable 判断还原出的摘要是否适合向量化
// 过滤三类噪声：篇幅异常（词数不在 [50, 500]）、出版商页面残留文本、
// 以及大量形如 [1] [2] 的引文标号（> 5 个视为参考文献片段而非摘要）。
func AbstractUsable(abstract string) bool {
	text := strings.TrimSpace(abstract)
	if text == "" {
		return false
	}

	words := strings.Fields(text)
	if len(words) < 50 || len(words) > 500 {
		return false
	}

	lower := strings.ToLower(text)
	for _, marker := range boilerplateMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	if countBracketCitations(text) > 5 {
		return false
	}

	// 句读稀少的长文本多半是关键词堆砌而非成文摘要
	if countSentenceMarks(text) < 3 {
		return false
	}

	return true
}

// countSentenceMarks 统计句子终结符
func countSentenceMarks(text string) int {
	count := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			count++
		}
	}
	return count
}

// countBracketCitations 统计形如 [12] 的方括号数字标号
func countBracketCitations(text string) int {
	count := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		j := i + 1
		for j < len(text) && text[j] >= '0' && text[j] <= '9' {
			j++
		}
		if j > i+1 && j < len(text) && text[j] == ']' {
			count++
			i = j
		}
	}
	return count
}
