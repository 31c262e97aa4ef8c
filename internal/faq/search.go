package faq

import (
	"sort"
	"strings"
)

const (
	minQueryLen = 3
	minWordLen  = 3
	minScore    = 20

	scoreKeywordExact   = 25
	scoreKeywordPartial = 10
	scoreQuestionHit    = 15
	scoreAnswerHit      = 2
	scoreRobotBonus     = 15
)

// robotHints are query words that signal interest in automation; matching
// queries boost CategoryRobot entries.
var robotHints = []string{"robot", "agent", "automat", "bot", "celery", "redis"}

// Result pairs a matched item with its relevance score.
type Result struct {
	Item  Item
	Score int
}

// Search scores the knowledge base against a free-text query and returns
// matches above the relevance threshold, best first. Queries shorter than
// three characters return nothing.
func Search(query string) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < minQueryLen {
		return nil
	}

	words := queryWords(q)
	wantsRobot := mentionsRobot(q)

	var results []Result
	for _, item := range Database {
		score := scoreItem(item, words)
		if wantsRobot && item.Category == CategoryRobot {
			score += scoreRobotBonus
		}
		if score >= minScore {
			results = append(results, Result{Item: item, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// scoreItem accumulates per query word: each word earns at most one
// keyword hit (exact over partial), plus question and answer hits.
func scoreItem(item Item, words []string) int {
	score := 0
	question := strings.ToLower(item.Question)
	answer := strings.ToLower(item.Answer)

	for _, w := range words {
		switch {
		case keywordEquals(item.Keywords, w):
			score += scoreKeywordExact
		case keywordContains(item.Keywords, w):
			score += scoreKeywordPartial
		}
		if strings.Contains(question, w) {
			score += scoreQuestionHit
		}
		if strings.Contains(answer, w) {
			score += scoreAnswerHit
		}
	}

	return score
}

func keywordEquals(keywords []string, word string) bool {
	for _, kw := range keywords {
		if strings.ToLower(kw) == word {
			return true
		}
	}
	return false
}

func keywordContains(keywords []string, word string) bool {
	for _, kw := range keywords {
		if strings.Contains(strings.ToLower(kw), word) {
			return true
		}
	}
	return false
}

// queryWords splits the query and drops short filler words.
func queryWords(q string) []string {
	var words []string
	for _, w := range strings.Fields(q) {
		if len(w) >= minWordLen {
			words = append(words, w)
		}
	}
	return words
}

func mentionsRobot(q string) bool {
	for _, h := range robotHints {
		if strings.Contains(q, h) {
			return true
		}
	}
	return false
}
