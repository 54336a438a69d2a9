// Package search finds chapters by title.
package search

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/leaf/internal/domain"
)

// Result is a chapter match with highlight positions
type Result struct {
	Chapter        domain.Chapter
	MatchedIndexes []int // Rune positions in the title that matched
	Score          int   // Higher is better
}

// ChapterIndex implements sahilm/fuzzy.Source over a book's chapters
type ChapterIndex struct {
	chapters    []domain.Chapter
	lowerTitles []string // Pre-computed lowercase titles
}

// NewChapterIndex indexes chapters for repeated filtering
func NewChapterIndex(chapters []domain.Chapter) *ChapterIndex {
	lower := make([]string, len(chapters))
	for i, c := range chapters {
		lower[i] = strings.ToLower(c.Title)
	}
	return &ChapterIndex{chapters: chapters, lowerTitles: lower}
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *ChapterIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of chapters (implements fuzzy.Source)
func (idx *ChapterIndex) Len() int { return len(idx.chapters) }

// Chapters returns the indexed chapters in book order
func (idx *ChapterIndex) Chapters() []domain.Chapter {
	return idx.chapters
}

// Filter returns chapters matching query, best first. An empty query returns
// every chapter in book order.
func (idx *ChapterIndex) Filter(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]Result, len(idx.chapters))
		for i, c := range idx.chapters {
			results[i] = Result{Chapter: c}
		}
		return results
	}

	matches := fuzzy.FindFrom(query, idx)
	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Chapter:        idx.chapters[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// Best picks the chapter a command-line query most likely names. Titles that
// contain every query character in order are ranked by edit distance, ties
// going to the earlier chapter.
func Best(chapters []domain.Chapter, query string) (domain.Chapter, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(chapters) == 0 {
		return domain.Chapter{}, false
	}

	titles := make([]string, len(chapters))
	for i, c := range chapters {
		titles[i] = c.Title
	}

	ranks := lfuzzy.RankFindNormalizedFold(query, titles)
	if len(ranks) == 0 {
		return domain.Chapter{}, false
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	return chapters[ranks[0].OriginalIndex], true
}
