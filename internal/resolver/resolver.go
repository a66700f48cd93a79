// Package resolver maps free-text opening, candidate and stage references
// onto exact backend identifiers using fuzzy matching over cached pools.
package resolver

import (
	"fmt"
	"strings"
	"time"

	"github.com/tdnguyen/hiring-mcp/internal/basehiring"
	"github.com/tdnguyen/hiring-mcp/internal/cache"
	"github.com/tdnguyen/hiring-mcp/internal/match"
	"go.uber.org/zap"
)

// Directory is the upstream surface the resolver builds matching pools
// from. Implemented by basehiring.Client.
type Directory interface {
	ListActiveOpenings() ([]basehiring.Opening, error)
	CandidatesForOpening(openingID string) ([]*basehiring.Candidate, error)
	StagesForOpening(openingID string) ([]string, error)
}

// Deps aggregates the resolver's collaborators.
type Deps struct {
	Directory Directory
	Cache     cache.Cacher
	Logger    *zap.Logger
}

type Resolver struct {
	dir        Directory
	cache      cache.Cacher
	logger     *zap.Logger
	thresholds match.Thresholds
	ttl        time.Duration
}

func New(deps *Deps, thresholds match.Thresholds) *Resolver {
	return &Resolver{
		dir:        deps.Directory,
		cache:      deps.Cache,
		logger:     deps.Logger,
		thresholds: thresholds,
		ttl:        cache.DefaultTTL,
	}
}

// Thresholds returns the similarity thresholds the resolver was built with.
func (r *Resolver) Thresholds() match.Thresholds {
	return r.thresholds
}

// OpeningResolution is the outcome of resolving an opening reference.
// A miss is a value, not an error; Reason explains it and BestScore shows
// how close the nearest candidate came.
type OpeningResolution struct {
	Found     bool
	ID        string
	Name      string
	Score     float64
	Fuzzy     bool
	Threshold float64
	BestScore float64
	PoolSize  int
	Reason    string
}

// ResolveOpening maps an opening id or name onto the canonical (id, name)
// pair. Exact numeric ids are validated against the active pool without
// fuzzy matching.
func (r *Resolver) ResolveOpening(ref string) (*OpeningResolution, error) {
	pool, err := r.openings()
	if err != nil {
		return nil, err
	}

	threshold := r.thresholds.Opening
	resolution := &OpeningResolution{Threshold: threshold, PoolSize: len(pool)}

	if len(pool) == 0 {
		resolution.Reason = "no active openings to search"
		return resolution, nil
	}

	trimmed, kind := classify(ref)
	if kind == exactID {
		for _, opening := range pool {
			if opening.ID == trimmed {
				resolution.Found = true
				resolution.ID = opening.ID
				resolution.Name = opening.Name
				resolution.Score = 1.0
				return resolution, nil
			}
		}

		resolution.Reason = fmt.Sprintf("no active opening with id %q", trimmed)
		return resolution, nil
	}

	names := make([]string, len(pool))
	for i, opening := range pool {
		names[i] = opening.Name
	}

	result, ok := match.FindBestMatch(trimmed, names, threshold)
	resolution.BestScore = result.Score
	if !ok {
		resolution.Reason = fmt.Sprintf(
			"no opening matched %q: best score %.2f is below threshold %.2f", trimmed, result.Score, threshold)
		return resolution, nil
	}

	resolution.Found = true
	resolution.ID = pool[result.Index].ID
	resolution.Name = pool[result.Index].Name
	resolution.Score = result.Score
	resolution.Fuzzy = result.Score < 1.0

	r.logger.Debug("resolved opening",
		zap.String("query", trimmed),
		zap.String("opening_id", resolution.ID),
		zap.String("opening_name", resolution.Name),
		zap.Float64("score", resolution.Score),
	)

	return resolution, nil
}

// CandidateMatch is one successfully resolved name from a batch.
type CandidateMatch struct {
	Query string
	ID    string
	Name  string
	Score float64
	Fuzzy bool
}

// UnresolvedName is a batch entry that found no candidate above threshold.
type UnresolvedName struct {
	Query     string
	BestScore float64
	Reason    string
}

// CandidateBatch carries partial results: resolving some names while others
// miss is not an error.
type CandidateBatch struct {
	Resolved   []CandidateMatch
	Unresolved []UnresolvedName
	Threshold  float64
	PoolSize   int
}

// ResolveCandidates resolves a comma-separated list of candidate names or
// ids within one opening. Exact numeric ids are accepted without touching
// the candidate pool; the pool is fetched lazily on the first name query.
func (r *Resolver) ResolveCandidates(refs string, openingID string) (*CandidateBatch, error) {
	threshold := r.thresholds.Candidate
	batch := &CandidateBatch{Threshold: threshold}

	var pool []*basehiring.Candidate
	var names []string
	poolLoaded := false

	for _, raw := range strings.Split(refs, ",") {
		trimmed, kind := classify(raw)
		if trimmed == "" {
			continue
		}

		if kind == exactID {
			batch.Resolved = append(batch.Resolved, CandidateMatch{Query: trimmed, ID: trimmed, Score: 1.0})
			continue
		}

		if !poolLoaded {
			candidates, err := r.candidates(openingID)
			if err != nil {
				return nil, err
			}
			poolLoaded = true

			for _, candidate := range candidates {
				if candidate.Name == "" {
					continue
				}
				pool = append(pool, candidate)
				names = append(names, candidate.Name)
			}
			batch.PoolSize = len(pool)
		}

		if len(pool) == 0 {
			batch.Unresolved = append(batch.Unresolved, UnresolvedName{
				Query:  trimmed,
				Reason: "opening has no candidates to search",
			})
			continue
		}

		result, ok := match.FindBestMatch(trimmed, names, threshold)
		if !ok {
			batch.Unresolved = append(batch.Unresolved, UnresolvedName{
				Query:     trimmed,
				BestScore: result.Score,
				Reason: fmt.Sprintf(
					"no candidate matched %q: best score %.2f is below threshold %.2f", trimmed, result.Score, threshold),
			})
			continue
		}

		batch.Resolved = append(batch.Resolved, CandidateMatch{
			Query: trimmed,
			ID:    pool[result.Index].ID,
			Name:  pool[result.Index].Name,
			Score: result.Score,
			Fuzzy: result.Score < 1.0,
		})
	}

	r.logger.Debug("resolved candidate batch",
		zap.String("opening_id", openingID),
		zap.Int("resolved", len(batch.Resolved)),
		zap.Int("unresolved", len(batch.Unresolved)),
	)

	return batch, nil
}

// StageResolution is the outcome of resolving a stage name.
type StageResolution struct {
	Found     bool
	Name      string
	Score     float64
	Threshold float64
	BestScore float64
	PoolSize  int
	Reason    string
}

// ResolveStage maps a stage reference onto one of the opening's stage
// names. The threshold is lower than for openings and candidates because
// stage vocabularies are small and abbreviation-prone.
func (r *Resolver) ResolveStage(ref string, openingID string) (*StageResolution, error) {
	stages, err := r.stages(openingID)
	if err != nil {
		return nil, err
	}

	threshold := r.thresholds.Stage
	resolution := &StageResolution{Threshold: threshold, PoolSize: len(stages)}

	if len(stages) == 0 {
		resolution.Reason = "opening has no stages to search"
		return resolution, nil
	}

	result, ok := match.FindBestMatch(ref, stages, threshold)
	resolution.BestScore = result.Score
	if !ok {
		resolution.Reason = fmt.Sprintf(
			"no stage matched %q: best score %.2f is below threshold %.2f", ref, result.Score, threshold)
		return resolution, nil
	}

	resolution.Found = true
	resolution.Name = stages[result.Index]
	resolution.Score = result.Score

	return resolution, nil
}

func (r *Resolver) openings() ([]basehiring.Opening, error) {
	return cache.Fetch(r.cache, "openings", r.ttl, r.dir.ListActiveOpenings)
}

func (r *Resolver) candidates(openingID string) ([]*basehiring.Candidate, error) {
	return cache.Fetch(r.cache, "candidates:"+openingID, r.ttl, func() ([]*basehiring.Candidate, error) {
		return r.dir.CandidatesForOpening(openingID)
	})
}

func (r *Resolver) stages(openingID string) ([]string, error) {
	return cache.Fetch(r.cache, "stages:"+openingID, r.ttl, func() ([]string, error) {
		return r.dir.StagesForOpening(openingID)
	})
}
