package catalog

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopWords are dropped before weighting; plots are English.
var stopWords = toSet(strings.Fields(`
a about above after again against all almost alone along already also although always am among an and
another any anyone anything are around as at back be became because become becomes been before being
below between both but by can cannot could did do does doing done down during each either else enough
even ever every few find first for former from further get gets getting give go had has have having he
her here hers herself him himself his how however i if in into is it its itself just last least less
made many may me might more most mostly much must my myself neither never nevertheless next no nobody
none nor not nothing now of off often on once one only onto or other others otherwise our ours
ourselves out over own part per perhaps please rather re same see seem seemed seeming seems several she
should since so some somehow someone something sometime sometimes somewhere still such than that the
their theirs them themselves then there thereafter these they this those though through throughout thus
to together too toward towards two under until up upon us very via was we well were what whatever when
whenever where whether which while who whoever whole whom whose why will with within without would yet
you your yours yourself yourselves
`))

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// tokenize lowercases text and keeps word tokens of two or more runes that
// are not stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

type vector map[string]float64

// tfidf weighs every document against the corpus of all of them with a
// smoothed idf, ln((1+n)/(1+df))+1, and scales each vector to unit length.
func tfidf(docs []string) []vector {
	counts := make([]map[string]int, len(docs))
	df := map[string]int{}
	for i, doc := range docs {
		counts[i] = map[string]int{}
		for _, tok := range tokenize(doc) {
			if counts[i][tok] == 0 {
				df[tok]++
			}
			counts[i][tok]++
		}
	}

	n := float64(len(docs))
	vectors := make([]vector, len(docs))
	for i, tf := range counts {
		v := make(vector, len(tf))
		var norm float64
		for term, c := range tf {
			w := float64(c) * (math.Log((1+n)/(1+float64(df[term]))) + 1)
			v[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range v {
				v[term] /= norm
			}
		}
		vectors[i] = v
	}
	return vectors
}

// cosine assumes unit vectors.
func cosine(a, b vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}
	return dot
}
