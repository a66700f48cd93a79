// Package match resolves free-text references against small candidate pools
// using TF-IDF cosine similarity with per-entity-kind thresholds.
package match

// Result describes the best candidate found for a query.
type Result struct {
	// Index of the best candidate in the input slice, or -1 when the pool
	// was empty.
	Index int
	// Value is the candidate string at Index.
	Value string
	// Score is the similarity achieved by the best candidate, in [0,1].
	// It is populated even when the match is rejected so callers can
	// report how close the query came.
	Score float64
}

// Scores returns the similarity of query against every candidate, in
// candidate order. Exact normalized equality forces 1.0 per entry.
func Scores(query string, candidates []string) []float64 {
	if len(candidates) == 0 {
		return nil
	}

	pool := fit(candidates)
	queryVec := pool.transform(query)
	normalized := Normalize(query)

	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		if Normalize(candidate) == normalized {
			scores[i] = 1.0
			continue
		}
		scores[i] = cosine(queryVec, pool.vectors[i])
	}

	return scores
}

// FindBestMatch scores query against every candidate and returns the best
// one together with whether it passed the threshold. Ties resolve to the
// first index. A case- and diacritic-insensitive exact match always scores
// 1.0, regardless of vectorization.
func FindBestMatch(query string, candidates []string, threshold float64) (Result, bool) {
	if len(candidates) == 0 {
		return Result{Index: -1}, false
	}

	normalized := Normalize(query)
	for i, candidate := range candidates {
		if Normalize(candidate) == normalized {
			return Result{Index: i, Value: candidate, Score: 1.0}, threshold <= 1.0
		}
	}

	// Fit the vector space on the pool and project the query onto it, so
	// query tokens the pool never uses do not dilute the similarity.
	pool := fit(candidates)
	queryVec := pool.transform(query)

	best := Result{Index: 0, Value: candidates[0], Score: cosine(queryVec, pool.vectors[0])}
	for i := 1; i < len(candidates); i++ {
		if score := cosine(queryVec, pool.vectors[i]); score > best.Score {
			best = Result{Index: i, Value: candidates[i], Score: score}
		}
	}

	return best, best.Score >= threshold
}
