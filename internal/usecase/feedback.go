package usecase

import (
	"context"
	"errors"
	"sync"

	"jscenario/internal/domain"
	"jscenario/internal/score"
)

var ErrNoFeedback = errors.New("no evaluation is being shown")

// CompletionRecorder receives the scenario completed event.
type CompletionRecorder interface {
	OnScenarioCompleted(ctx context.Context, score int) (domain.Stats, error)
}

// FeedbackView is everything a shell renders for an evaluation.
type FeedbackView struct {
	Interaction    domain.Interaction `json:"interaction"`
	Projection     score.Projection   `json:"projection"`
	Summary        string             `json:"summary"`
	HasNextChapter bool               `json:"hasNextChapter"`
	NextChapterID  string             `json:"nextChapterId,omitempty"`
}

// ContinueResult reports what Continue did.
type ContinueResult struct {
	Completed bool          `json:"completed"`
	Stats     *domain.Stats `json:"stats,omitempty"`
}

// Feedback holds the latest evaluation and decides between moving to the next
// chapter and completing the scenario.
type Feedback struct {
	chapters domain.ChapterTable
	progress CompletionRecorder

	mu      sync.Mutex
	current *domain.Interaction
}

func NewFeedback(chapters domain.ChapterTable, progress CompletionRecorder) *Feedback {
	return &Feedback{chapters: chapters, progress: progress}
}

// Show makes interaction the current evaluation.
func (f *Feedback) Show(interaction domain.Interaction) FeedbackView {
	f.mu.Lock()
	f.current = &interaction
	f.mu.Unlock()

	next, ok := f.chapters.NextChapterID(interaction.ScenarioID)
	summary := interaction.Evaluation.CoachingAdvice
	if summary == "" {
		summary = score.Summary(interaction.Evaluation)
	}
	return FeedbackView{
		Interaction:    interaction,
		Projection:     score.Project(interaction.Evaluation.OverallScore),
		Summary:        summary,
		HasNextChapter: ok,
		NextChapterID:  next,
	}
}

// HasNextChapter reports whether the shown scenario has a following chapter.
func (f *Feedback) HasNextChapter() bool {
	_, ok := f.NextChapterID()
	return ok
}

// NextChapterID returns the chapter following the shown scenario.
func (f *Feedback) NextChapterID() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return "", false
	}
	return f.chapters.NextChapterID(f.current.ScenarioID)
}

// Continue leaves the feedback. The scenario counts as completed only when
// no further chapter exists.
func (f *Feedback) Continue(ctx context.Context) (ContinueResult, error) {
	f.mu.Lock()
	current := f.current
	f.current = nil
	f.mu.Unlock()

	if current == nil {
		return ContinueResult{}, ErrNoFeedback
	}
	if f.chapters.HasNextChapter(current.ScenarioID) {
		return ContinueResult{}, nil
	}
	if f.progress == nil {
		return ContinueResult{Completed: true}, nil
	}
	stats, err := f.progress.OnScenarioCompleted(ctx, current.Evaluation.OverallScore)
	if err != nil {
		return ContinueResult{Completed: true}, err
	}
	return ContinueResult{Completed: true, Stats: &stats}, nil
}

// Advance leaves the feedback for the next chapter. It is not a completion.
func (f *Feedback) Advance() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return "", ErrNoFeedback
	}
	next, ok := f.chapters.NextChapterID(f.current.ScenarioID)
	if !ok {
		return "", ErrInvalidTransition
	}
	f.current = nil
	return next, nil
}
