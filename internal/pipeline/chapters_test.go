package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lore/internal/docset"
)

func chaptersContext() *Context {
	return &Context{
		ProjectName: "demo",
		Files:       demoFiles(),
		Abstractions: []docset.Abstraction{
			{Name: "Alpha", Responsibility: "first layer", FileIndices: []int{0}},
			{Name: "Beta", Responsibility: "second layer", FileIndices: []int{1, 2}},
			{Name: "Gamma", Responsibility: "third layer"},
		},
		Relationships: &docset.RelationshipSet{
			Summary:              "s",
			ArchitectureOverview: "o",
			Relationships: []docset.Relationship{
				{FromIndex: 1, ToIndex: 0, Kind: "uses", Description: "Beta calls Alpha"},
			},
		},
		ChapterOrder: []int{2, 0, 1},
	}
}

// chapterFor extracts the component name a chapter prompt asks about.
func chapterFor(prompt string) string {
	const marker = "documentation for the '"
	start := strings.Index(prompt, marker)
	if start < 0 {
		return ""
	}
	rest := prompt[start+len(marker):]
	end := strings.Index(rest, "'")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

func TestChaptersStage_WritesInReadingOrder(t *testing.T) {
	t.Parallel()

	svc := &scriptedReasoner{reply: func(prompt string, _ int) (string, error) {
		return "chapter about " + chapterFor(prompt), nil
	}}
	st := newChaptersStage(svc, 2, testLogger())
	rc := chaptersContext()

	require.NoError(t, st.Run(context.Background(), rc))
	assert.Equal(t, []string{
		"chapter about Gamma",
		"chapter about Alpha",
		"chapter about Beta",
	}, rc.Chapters)
	assert.Equal(t, 3, svc.callCount())
}

func TestChaptersStage_RetriesFailedChapter(t *testing.T) {
	t.Parallel()

	svc := &scriptedReasoner{reply: func(prompt string, ask int) (string, error) {
		if chapterFor(prompt) == "Beta" && ask == 1 {
			return "", errScripted
		}
		return "chapter about " + chapterFor(prompt), nil
	}}
	st := newChaptersStage(svc, 1, testLogger())
	st.sleep = instantSleep
	rc := chaptersContext()

	require.NoError(t, st.Run(context.Background(), rc))
	assert.Equal(t, "chapter about Beta", rc.Chapters[2])
	assert.Equal(t, 4, svc.callCount(), "three chapters plus one retry")
	assert.Equal(t, []int{1, 1, 1, 2}, svc.attempts, "the retried call must carry attempt 2")
}

func TestChaptersStage_EmptyResponseRetried(t *testing.T) {
	t.Parallel()

	svc := &scriptedReasoner{reply: func(prompt string, ask int) (string, error) {
		if chapterFor(prompt) == "Alpha" && ask == 1 {
			return "   ", nil
		}
		return "chapter about " + chapterFor(prompt), nil
	}}
	st := newChaptersStage(svc, 1, testLogger())
	st.sleep = instantSleep
	rc := chaptersContext()

	require.NoError(t, st.Run(context.Background(), rc))
	assert.Equal(t, "chapter about Alpha", rc.Chapters[1])
}

func TestChaptersStage_FailsAfterBudget(t *testing.T) {
	t.Parallel()

	svc := &scriptedReasoner{reply: func(prompt string, _ int) (string, error) {
		if chapterFor(prompt) == "Beta" {
			return "", errScripted
		}
		return "chapter about " + chapterFor(prompt), nil
	}}
	st := newChaptersStage(svc, 1, testLogger())
	st.sleep = instantSleep
	rc := chaptersContext()

	err := st.Run(context.Background(), rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `chapter "Beta"`)
	assert.ErrorIs(t, err, errScripted)
	assert.Nil(t, rc.Chapters)

	svc.mu.Lock()
	betaAsks := 0
	for _, p := range svc.prompts {
		if chapterFor(p) == "Beta" {
			betaAsks++
		}
	}
	svc.mu.Unlock()
	assert.Equal(t, itemPolicy.Attempts, betaAsks)
}

func TestChaptersStage_PromptContent(t *testing.T) {
	t.Parallel()

	svc := &scriptedReasoner{reply: func(prompt string, _ int) (string, error) {
		return "chapter about " + chapterFor(prompt), nil
	}}
	st := newChaptersStage(svc, 1, testLogger())
	rc := chaptersContext()

	require.NoError(t, st.Run(context.Background(), rc))

	var alphaPrompt, betaPrompt string
	for _, p := range svc.prompts {
		switch chapterFor(p) {
		case "Alpha":
			alphaPrompt = p
		case "Beta":
			betaPrompt = p
		}
	}
	require.NotEmpty(t, alphaPrompt)
	require.NotEmpty(t, betaPrompt)

	// Alpha sits in the middle of the reading order.
	assert.Contains(t, alphaPrompt, "This is chapter 2 of 3.")
	assert.Contains(t, alphaPrompt, "1. Gamma (01_gamma.md)")
	assert.Contains(t, alphaPrompt, "2. Alpha (02_alpha.md)")
	assert.Contains(t, alphaPrompt, "3. Beta (03_beta.md)")
	assert.Contains(t, alphaPrompt, "The previous chapter covered Gamma (01_gamma.md).")
	assert.Contains(t, alphaPrompt, "The next chapter covers Beta (03_beta.md).")
	assert.Contains(t, alphaPrompt, "- **Beta**: Beta calls Alpha")
	assert.Contains(t, alphaPrompt, "### main.py")

	// Beta's component info and sources come from its own abstraction.
	assert.Contains(t, betaPrompt, "- **Primary Responsibility**: second layer")
	assert.Contains(t, betaPrompt, "### app/core.py")
	assert.Contains(t, betaPrompt, "### app/store.py")
	assert.NotContains(t, betaPrompt, "The next chapter covers")

	gammaPrompt := svc.prompts[0]
	assert.Contains(t, gammaPrompt, "No specific files identified for this component.")
	assert.Contains(t, gammaPrompt, "No direct relationships identified.")
	assert.NotContains(t, gammaPrompt, "The previous chapter covered")
}

func TestNewChaptersStage_ClampsWorkers(t *testing.T) {
	t.Parallel()

	st := newChaptersStage(answer("x"), 0, testLogger())
	assert.Equal(t, 1, st.workers)
}

func TestChapterFor(t *testing.T) {
	t.Parallel()

	prompt := fmt.Sprintf("Write comprehensive technical documentation for the '%s' component.", "Alpha")
	assert.Equal(t, "Alpha", chapterFor(prompt))
	assert.Equal(t, "", chapterFor("unrelated text"))
}
