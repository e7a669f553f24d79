package match

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"skillmatch/internal/types"
)

// Options tunes the matching engine. Zero values are replaced with
// defaults by NewEngine.
type Options struct {
	// Threshold is the minimum per-skill score to accept a match.
	Threshold float64
	// NGramSize is the character n-gram length for cosine similarity.
	NGramSize int
	// Workers caps concurrent job scoring goroutines.
	Workers int
}

const (
	DefaultThreshold = 0.6
	DefaultNGramSize = 2
)

// Engine scores job postings against a resume's hard skills using greedy
// assignment over normalized skill tokens. An Engine is stateless and safe
// for concurrent use; the only mutable matching state is the per-job
// used-skill set scoped to a single run.
type Engine struct {
	opts Options
}

// NewEngine creates an engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.NGramSize <= 0 {
		opts.NGramSize = DefaultNGramSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Engine{opts: opts}
}

// skillPair keeps a job keyword's display string next to its normalized
// token so accepted matches can report the original text.
type skillPair struct {
	original   string
	normalized string
}

// FindBestMatches scores every complete job posting against the resume's
// hard skills and returns the scored jobs sorted by match score
// descending. Incomplete postings are dropped, not scored zero. A resume
// without hard skills or an empty job list yields an empty result, never
// an error: malformed data degrades, it does not fail.
//
// Jobs are scored independently, so the work fans out across a bounded
// worker pool.
func (e *Engine) FindBestMatches(ctx context.Context, jobs []types.JobPosting, resume *types.ResumeDocument) []types.MatchResult {
	if resume == nil || len(jobs) == 0 {
		return []types.MatchResult{}
	}

	resumeTokens := make([]string, 0, len(resume.HardSkills))
	for _, skill := range resume.HardSkills {
		if token := Normalize(skill); token != "" {
			resumeTokens = append(resumeTokens, token)
		}
	}
	if len(resumeTokens) == 0 {
		return []types.MatchResult{}
	}

	eligible := make([]types.JobPosting, 0, len(jobs))
	for _, job := range jobs {
		if job.IsComplete() {
			eligible = append(eligible, job)
		}
	}
	if len(eligible) == 0 {
		return []types.MatchResult{}
	}

	scored := make([]*types.MatchResult, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, job := range eligible {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if result, ok := e.scoreJob(job, resumeTokens); ok {
				scored[i] = &result
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return []types.MatchResult{}
	}

	results := make([]types.MatchResult, 0, len(scored))
	for _, r := range scored {
		if r != nil {
			results = append(results, *r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	return results
}

// scoreJob runs the greedy assignment for one job. Iterating resume
// tokens in their given order, each token claims the best-scoring unused
// job skill; a claimed job skill is consumed and never counted toward a
// second resume skill. The denominator is the job's own skill count, so a
// job listing fewer skills needs fewer matches to score high.
func (e *Engine) scoreJob(job types.JobPosting, resumeTokens []string) (types.MatchResult, bool) {
	pairs := make([]skillPair, 0, len(job.Keywords))
	for _, kw := range job.Keywords {
		if token := Normalize(kw); token != "" {
			pairs = append(pairs, skillPair{original: kw, normalized: token})
		}
	}
	if len(pairs) == 0 {
		return types.MatchResult{}, false
	}

	used := make(map[string]bool, len(pairs))
	var total float64
	var matched []string

	for _, resumeToken := range resumeTokens {
		bestScore := -1.0
		bestIdx := -1
		for idx, pair := range pairs {
			if used[pair.normalized] {
				continue
			}
			score := e.skillScore(resumeToken, pair.normalized)
			if score > bestScore {
				bestScore = score
				bestIdx = idx
			}
		}
		if bestIdx >= 0 && bestScore >= e.opts.Threshold {
			total += bestScore
			used[pairs[bestIdx].normalized] = true
			matched = append(matched, pairs[bestIdx].original)
		}
	}

	return types.MatchResult{
		Job:           job,
		MatchScore:    total / float64(len(pairs)) * 100,
		MatchedSkills: matched,
	}, true
}

// skillScore compares two normalized tokens. Prefix containment in either
// direction is a full match (covers abbreviations like "mongo" vs
// "mongodb"); everything else goes through n-gram cosine similarity.
func (e *Engine) skillScore(resumeToken, jobToken string) float64 {
	if strings.HasPrefix(jobToken, resumeToken) || strings.HasPrefix(resumeToken, jobToken) {
		return 1.0
	}
	return CosineSimilarity(resumeToken, jobToken, e.opts.NGramSize)
}
