package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmatch/internal/types"
)

func completeJob(urn string, keywords ...string) types.JobPosting {
	return types.JobPosting{
		URN:              urn,
		Title:            "Software Engineer",
		Company:          "Acme",
		Keywords:         keywords,
		Responsibilities: []string{"build things"},
		Qualifications:   []string{"experience building things"},
	}
}

func TestFindBestMatchesGuards(t *testing.T) {
	engine := NewEngine(Options{})
	resume := &types.ResumeDocument{HardSkills: []string{"python"}}

	assert.Empty(t, engine.FindBestMatches(context.Background(), nil, resume))
	assert.Empty(t, engine.FindBestMatches(context.Background(), []types.JobPosting{}, resume))
	assert.Empty(t, engine.FindBestMatches(context.Background(),
		[]types.JobPosting{completeJob("urn:1", "python")}, &types.ResumeDocument{}))
	assert.Empty(t, engine.FindBestMatches(context.Background(),
		[]types.JobPosting{completeJob("urn:1", "python")}, nil))
	assert.Empty(t, engine.FindBestMatches(context.Background(),
		[]types.JobPosting{completeJob("urn:1", "python")},
		&types.ResumeDocument{HardSkills: []string{"   ", ""}}))
}

func TestFindBestMatchesDropsIncompleteJobs(t *testing.T) {
	engine := NewEngine(Options{})
	resume := &types.ResumeDocument{HardSkills: []string{"python"}}

	noQualifications := types.JobPosting{
		URN:              "urn:incomplete",
		Keywords:         types.KeywordList{"python"},
		Responsibilities: []string{"build things"},
	}
	results := engine.FindBestMatches(context.Background(),
		[]types.JobPosting{noQualifications, completeJob("urn:ok", "python")}, resume)

	require.Len(t, results, 1)
	assert.Equal(t, "urn:ok", results[0].Job.URN)
}

func TestFindBestMatchesEndToEnd(t *testing.T) {
	engine := NewEngine(Options{})
	resume := &types.ResumeDocument{HardSkills: []string{"python", "docker"}}
	job := completeJob("urn:1", "Python", "Go", "SQL", "Docker", "Kubernetes")

	results := engine.FindBestMatches(context.Background(), []types.JobPosting{job}, resume)

	require.Len(t, results, 1)
	assert.InDelta(t, 40.0, results[0].MatchScore, 1e-9)
	assert.ElementsMatch(t, []string{"Python", "Docker"}, results[0].MatchedSkills)
}

func TestPrefixRuleBeatsCosinePath(t *testing.T) {
	engine := NewEngine(Options{})
	// Cosine similarity of "mongo" vs "mongodb" bigrams is below 1, so a
	// full score proves the prefix rule fired.
	require.Less(t, CosineSimilarity("mongo", "mongodb", 2), 1.0)

	resume := &types.ResumeDocument{HardSkills: []string{"mongo"}}
	job := completeJob("urn:1", "mongodb")
	results := engine.FindBestMatches(context.Background(), []types.JobPosting{job}, resume)

	require.Len(t, results, 1)
	assert.InDelta(t, 100.0, results[0].MatchScore, 1e-9)
	assert.Equal(t, []string{"mongodb"}, results[0].MatchedSkills)
}

func TestJobSkillConsumedAtMostOnce(t *testing.T) {
	engine := NewEngine(Options{})
	// Two identical resume skills cannot both claim the single job skill.
	resume := &types.ResumeDocument{HardSkills: []string{"python", "python"}}
	job := completeJob("urn:1", "Python", "Kubernetes")

	results := engine.FindBestMatches(context.Background(), []types.JobPosting{job}, resume)

	require.Len(t, results, 1)
	assert.Equal(t, []string{"Python"}, results[0].MatchedSkills)
	assert.InDelta(t, 50.0, results[0].MatchScore, 1e-9)
}

func TestResultsSortedByScoreDescending(t *testing.T) {
	engine := NewEngine(Options{Workers: 4})
	resume := &types.ResumeDocument{HardSkills: []string{"python", "docker"}}
	jobs := []types.JobPosting{
		completeJob("urn:low", "Python", "Go", "SQL", "Docker", "Kubernetes"),
		completeJob("urn:high", "Python", "Docker"),
		completeJob("urn:mid", "Python", "Go", "Docker", "Terraform"),
	}

	results := engine.FindBestMatches(context.Background(), jobs, resume)

	require.Len(t, results, 3)
	assert.Equal(t, "urn:high", results[0].Job.URN)
	assert.Equal(t, "urn:mid", results[1].Job.URN)
	assert.Equal(t, "urn:low", results[2].Job.URN)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchScore, results[i].MatchScore)
	}
}

func TestDenominatorIsJobOwnSkillCount(t *testing.T) {
	engine := NewEngine(Options{})
	resume := &types.ResumeDocument{HardSkills: []string{"python", "docker", "go", "sql"}}
	// Job lists a single skill; one match is enough for a full score even
	// though the resume offers four.
	job := completeJob("urn:1", "Python")

	results := engine.FindBestMatches(context.Background(), []types.JobPosting{job}, resume)

	require.Len(t, results, 1)
	assert.InDelta(t, 100.0, results[0].MatchScore, 1e-9)
}

func TestBelowThresholdSkillContributesNothing(t *testing.T) {
	engine := NewEngine(Options{})
	resume := &types.ResumeDocument{HardSkills: []string{"rust"}}
	job := completeJob("urn:1", "Kubernetes", "Terraform")

	results := engine.FindBestMatches(context.Background(), []types.JobPosting{job}, resume)

	require.Len(t, results, 1)
	assert.Zero(t, results[0].MatchScore)
	assert.Empty(t, results[0].MatchedSkills)
}

func TestKeywordsWhoseNormalFormIsEmptyAreDropped(t *testing.T) {
	engine := NewEngine(Options{})
	resume := &types.ResumeDocument{HardSkills: []string{"python"}}
	// The blank keyword disappears before scoring, so the denominator is 2.
	job := completeJob("urn:1", "Python", "   ", "Go")

	results := engine.FindBestMatches(context.Background(), []types.JobPosting{job}, resume)

	require.Len(t, results, 1)
	assert.InDelta(t, 50.0, results[0].MatchScore, 1e-9)
}
