// Package pathscore implements the PathScore heuristic: a weighted-sum
// comparison of a candidate's metrics against a baseline.
package pathscore

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/types"
)

// Metrics maps metric names to observed values, e.g.
// {"latency_ms": 120, "cost_usd": 0.4, "quality": 0.87}.
type Metrics map[string]float64

// Candidate is a named set of metrics to score against a baseline.
type Candidate struct {
	Name    string  `json:"name"`
	Metrics Metrics `json:"metrics"`
}

// Score is the result of comparing one candidate against the baseline.
type Score struct {
	Name   string             `json:"name"`
	Impact float64            `json:"impact"`
	Deltas map[string]float64 `json:"deltas"` // normalized per-metric deltas
}

// Scorer computes weighted impact scores. Metrics absent from the weight
// table are ignored; a metric absent from candidate or baseline counts
// as zero.
type Scorer struct {
	weights map[string]float64
	logger  *zap.Logger
}

// NewScorer creates a scorer from a weight table. Negative weights are
// rejected: direction belongs in the metric delta, not the weight.
func NewScorer(weights map[string]float64, logger *zap.Logger) (*Scorer, error) {
	if len(weights) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "at least one metric weight is required")
	}
	for name, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, types.NewError(types.ErrInvalidRequest,
				fmt.Sprintf("invalid weight %v for metric %q", w, name))
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cp := make(map[string]float64, len(weights))
	for k, v := range weights {
		cp[k] = v
	}
	return &Scorer{weights: cp, logger: logger.With(zap.String("component", "pathscore"))}, nil
}

// ScoreCandidate compares candidate metrics against the baseline.
// Each delta is normalized by the baseline magnitude (floored at 1 to keep
// zero baselines finite), then weighted and summed into the impact score.
// A candidate equal to the baseline on all metrics scores exactly 0.
func (s *Scorer) ScoreCandidate(candidate Candidate, baseline Metrics) Score {
	deltas := make(map[string]float64, len(s.weights))
	impact := 0.0

	for name, weight := range s.weights {
		base := baseline[name]
		cand := candidate.Metrics[name]
		delta := (cand - base) / math.Max(math.Abs(base), 1)
		deltas[name] = delta
		impact += weight * delta
	}

	s.logger.Debug("candidate scored",
		zap.String("candidate", candidate.Name),
		zap.Float64("impact", impact),
	)
	return Score{Name: candidate.Name, Impact: impact, Deltas: deltas}
}

// Rank scores every candidate and returns the results sorted by impact
// descending. The sort is stable, so equal-impact candidates keep their
// input order.
func (s *Scorer) Rank(candidates []Candidate, baseline Metrics) []Score {
	out := make([]Score, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, s.ScoreCandidate(c, baseline))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Impact > out[j].Impact })
	return out
}
