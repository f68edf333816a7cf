package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTopicCount is the number of key topics returned by Extract.
const DefaultTopicCount = 5

const minTopicSentences = 3

var tokenRegex = regexp.MustCompile(`\b\w\w+\b`)

// vectorizerConfig mirrors the knobs of a classic TF-IDF vectorizer.
type vectorizerConfig struct {
	minN, maxN  int
	stopwords   map[string]bool
	minDF       int
	maxDF       float64
	maxFeatures int
}

var (
	phraseVectorizer = vectorizerConfig{
		minN: 2, maxN: 4,
		stopwords:   union(englishStopwords, genericTerms),
		minDF:       1,
		maxDF:       0.8,
		maxFeatures: 30,
	}
	wordVectorizer = vectorizerConfig{
		minN: 1, maxN: 1,
		stopwords:   englishStopwords,
		minDF:       2,
		maxDF:       1.0,
		maxFeatures: 20,
	}
)

type scoredTerm struct {
	term  string
	score float64
}

// KeyTopics ranks 2-4 word phrases by summed TF-IDF across the sentences of
// text and returns up to n title-cased topics. Phrases containing a generic
// term or overlapping an already chosen topic are skipped; if fewer than n
// survive, single words that occur in at least two sentences fill the gap.
// Text with fewer than three sentences has no topics.
func KeyTopics(text string, n int) []string {
	topics := make([]string, 0, n)
	sentences := Sentences(text)
	if n <= 0 || len(sentences) < minTopicSentences {
		return topics
	}

	caser := cases.Title(language.English)
	var chosen []string

	ranked := tfidf(sentences, phraseVectorizer)
	if len(ranked) > 2*n {
		ranked = ranked[:2*n]
	}
	for _, t := range ranked {
		if containsGeneric(t.term) || overlaps(t.term, chosen) || len(strings.Fields(t.term)) < 2 {
			continue
		}
		chosen = append(chosen, t.term)
		topics = append(topics, caser.String(t.term))
		if len(topics) == n {
			return topics
		}
	}

	words := tfidf(sentences, wordVectorizer)
	if len(words) > 10 {
		words = words[:10]
	}
	for _, t := range words {
		if len(topics) == n {
			break
		}
		if genericTerms[t.term] || contains(chosen, t.term) {
			continue
		}
		chosen = append(chosen, t.term)
		topics = append(topics, caser.String(t.term))
	}
	return topics
}

// tfidf scores the vocabulary of docs and returns terms by descending summed
// score. Rows are L2-normalized and idf is smoothed: ln((1+N)/(1+df)) + 1.
func tfidf(docs []string, cfg vectorizerConfig) []scoredTerm {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	total := make(map[string]int)

	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, g := range ngrams(doc, cfg) {
			if counts[i][g] == 0 {
				df[g]++
			}
			counts[i][g]++
			total[g]++
		}
	}

	maxDocs := cfg.maxDF * float64(len(docs))
	vocab := make([]string, 0, len(df))
	for term, d := range df {
		if d < cfg.minDF || float64(d) > maxDocs {
			continue
		}
		vocab = append(vocab, term)
	}
	sort.Slice(vocab, func(i, j int) bool {
		if total[vocab[i]] != total[vocab[j]] {
			return total[vocab[i]] > total[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if cfg.maxFeatures > 0 && len(vocab) > cfg.maxFeatures {
		vocab = vocab[:cfg.maxFeatures]
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(vocab))
	for _, term := range vocab {
		idf[term] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	scores := make(map[string]float64, len(vocab))
	for _, row := range counts {
		weights := make(map[string]float64)
		norm := 0.0
		for term, c := range row {
			w, ok := idf[term]
			if !ok {
				continue
			}
			weights[term] = float64(c) * w
			norm += weights[term] * weights[term]
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for term, w := range weights {
			scores[term] += w / norm
		}
	}

	ranked := make([]scoredTerm, 0, len(scores))
	for term, s := range scores {
		ranked = append(ranked, scoredTerm{term: term, score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].term < ranked[j].term
	})
	return ranked
}

// ngrams lowercases and tokenizes doc, drops stopwords, and returns the
// n-grams of the remaining tokens.
func ngrams(doc string, cfg vectorizerConfig) []string {
	var tokens []string
	for _, tok := range tokenRegex.FindAllString(strings.ToLower(doc), -1) {
		if !cfg.stopwords[tok] {
			tokens = append(tokens, tok)
		}
	}
	var out []string
	for size := cfg.minN; size <= cfg.maxN; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+size], " "))
		}
	}
	return out
}

func containsGeneric(term string) bool {
	for _, w := range strings.Fields(term) {
		if genericTerms[w] {
			return true
		}
	}
	return false
}

func overlaps(term string, chosen []string) bool {
	for _, c := range chosen {
		if strings.Contains(c, term) || strings.Contains(term, c) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func union(sets ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, set := range sets {
		for k := range set {
			out[k] = true
		}
	}
	return out
}
