package match

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold strips diacritics so that "Nguyễn" and "Nguyen" tokenize identically.
var fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the string, folds diacritics and collapses whitespace.
// Two strings normalizing to the same value are considered an exact match.
func Normalize(s string) string {
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

// tokenize splits a normalized string into maximal runs of letters and digits.
func tokenize(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// vector is a sparse TF-IDF document vector over a call-local vocabulary.
type vector map[string]float64

// corpus is a TF-IDF vector space fitted on a candidate pool. The vocabulary
// and document frequencies come from the pool alone, so vectors are only
// comparable within a single fit.
type corpus struct {
	idf     map[string]float64
	vectors []vector
}

// fit derives the vocabulary and inverse document frequencies from docs and
// builds their L2-normalized TF-IDF vectors.
func fit(docs []string) *corpus {
	tokenized := make([][]string, len(docs))
	df := make(map[string]int)

	for i, doc := range docs {
		tokenized[i] = tokenize(doc)

		seen := make(map[string]struct{}, len(tokenized[i]))
		for _, term := range tokenized[i] {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := float64(len(docs))
	c := &corpus{
		idf:     make(map[string]float64, len(df)),
		vectors: make([]vector, len(docs)),
	}
	for term, count := range df {
		c.idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	for i, terms := range tokenized {
		c.vectors[i] = c.weigh(terms)
	}

	return c
}

// transform projects a document onto the fitted vocabulary. Tokens the pool
// never produced carry no weight, so an abbreviated query is scored only on
// the terms it shares with the pool.
func (c *corpus) transform(doc string) vector {
	return c.weigh(tokenize(doc))
}

func (c *corpus) weigh(terms []string) vector {
	v := make(vector, len(terms))
	for _, term := range terms {
		if idf, ok := c.idf[term]; ok {
			v[term] += idf
		}
	}

	var norm2 float64
	for _, w := range v {
		norm2 += w * w
	}

	// A document with no in-vocabulary tokens stays a zero vector.
	if norm2 > 0 {
		length := math.Sqrt(norm2)
		for term := range v {
			v[term] /= length
		}
	}

	return v
}

// cosine returns the dot product of two L2-normalized vectors. A zero vector
// yields similarity 0.
func cosine(a, b vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}

	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}

	return dot
}
