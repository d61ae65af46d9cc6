package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"jscenario/internal/domain"
	"jscenario/internal/ports"
	"jscenario/internal/usecase"
)

// Formatter writes CLI output. It doubles as the session event sink so that
// recording progress and errors reach the terminal.
type Formatter struct {
	mu sync.Mutex
	w  io.Writer
	tr ports.Translator

	ticking bool
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// SetTranslator makes the formatter print localized labels.
func (f *Formatter) SetTranslator(tr ports.Translator) {
	f.mu.Lock()
	f.tr = tr
	f.mu.Unlock()
}

func (f *Formatter) t(id string, data map[string]any) string {
	if f.tr == nil {
		return id
	}
	return f.tr.T(id, data)
}

func (f *Formatter) printf(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endTickLocked()
	fmt.Fprintf(f.w, format, args...)
}

// endTickLocked terminates an in-place recording counter line.
func (f *Formatter) endTickLocked() {
	if f.ticking {
		fmt.Fprintln(f.w)
		f.ticking = false
	}
}

func (f *Formatter) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	switch reason {
	case domain.SessionReasonRecordingStarted, domain.SessionReasonRecordingRestarted:
		f.printf("🎙️  %s\n", f.t("status_recording", map[string]any{"Seconds": 0}))
	case domain.SessionReasonSubmitting:
		f.printf("⏳ %s\n", f.t("status_submitting", nil))
	}
}

func (f *Formatter) RecordingTick(elapsedSeconds int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, "\r🎙️  %s", f.t("status_recording", map[string]any{"Seconds": elapsedSeconds}))
	f.ticking = true
}

func (f *Formatter) EvaluationReady(_ domain.Interaction) {}

func (f *Formatter) SessionError(_ domain.ErrorCode, detail string) {
	f.Error(detail)
}

func (f *Formatter) RecordingCaptured(audio domain.RecordedAudio) {
	seconds := int(audio.Duration.Round(time.Second) / time.Second)
	f.printf("⏹️  %s\n", f.t("status_captured", map[string]any{"Seconds": seconds}))
}

func (f *Formatter) LoadingScenario() {
	f.printf("📥 %s\n", f.t("status_loading_scenario", nil))
}

func (f *Formatter) Scenario(s domain.Scenario, imageURL string) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n📘 %s  [%s · %s]\n", s.Title, s.ID, s.Category)
	if s.Description != "" {
		fmt.Fprintf(&b, "   %s\n", s.Description)
	}
	fmt.Fprintf(&b, "🎯 %s: %s\n", f.t("label_mission", nil), s.Mission)
	if len(s.ExpectedKeywords) > 0 {
		fmt.Fprintf(&b, "🔑 %s: %s\n", f.t("label_keywords", nil), strings.Join(s.ExpectedKeywords, ", "))
	}
	if imageURL != "" {
		fmt.Fprintf(&b, "🖼️  %s\n", imageURL)
	}
	f.printf("%s\n", b.String())
}

func (f *Formatter) Feedback(view usecase.FeedbackView) {
	eval := view.Interaction.Evaluation
	p := view.Projection

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s %d  %s  (%s)\n", p.Emoji, p.Score, p.Message, p.Color)
	fmt.Fprintf(&b, "%s\n\n", p.Headline)
	category := func(label string, c domain.FeedbackCategory) {
		fmt.Fprintf(&b, "  %-8s %3d  %s\n", f.t(label, nil), c.Score, c.Description)
		for _, s := range c.Suggestions {
			fmt.Fprintf(&b, "           · %s\n", s)
		}
	}
	category("label_pronunciation", eval.Pronunciation)
	category("label_grammar", eval.Grammar)
	category("label_appropriateness", eval.Appropriateness)

	fmt.Fprintf(&b, "\n%s: %s\n", f.t("label_transcription", nil), eval.Transcription)
	if eval.CorrectedText != nil && *eval.CorrectedText != "" {
		fmt.Fprintf(&b, "%s: %s\n", f.t("label_corrected", nil), *eval.CorrectedText)
	}
	if len(eval.ExampleResponses) > 0 {
		fmt.Fprintf(&b, "%s:\n", f.t("label_examples", nil))
		for _, ex := range eval.ExampleResponses {
			fmt.Fprintf(&b, "  - %s\n", ex)
		}
	}
	if view.Summary != "" {
		fmt.Fprintf(&b, "%s: %s\n", f.t("label_coaching", nil), view.Summary)
	}
	if view.Interaction.AIResponseText != "" {
		fmt.Fprintf(&b, "%s: %s\n", f.t("label_ai_response", nil), view.Interaction.AIResponseText)
	}
	if view.HasNextChapter {
		fmt.Fprintf(&b, "\n➡️  %s\n", f.t("status_next_chapter", map[string]any{"ID": view.NextChapterID}))
	}
	f.printf("%s", b.String())
}

func (f *Formatter) Stats(stats domain.Stats) {
	f.printf("📅 %s\n🔥 %s\n📊 %s\n",
		f.t("stats_today", map[string]any{"Completed": stats.CompletedToday, "Goal": stats.DailyGoal}),
		f.t("stats_streak", map[string]any{"Streak": stats.Streak}),
		f.t("stats_total", map[string]any{"Total": stats.TotalScenarios, "Average": stats.AverageScore}),
	)
}

func (f *Formatter) Completed(stats *domain.Stats) {
	f.printf("\n🏁 %s\n", f.t("status_completed", nil))
	if stats != nil {
		f.Stats(*stats)
	}
}

func (f *Formatter) Error(msg string) {
	f.printf("❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	f.printf("ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	f.printf("✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	f.printf("⚠️  %s\n", msg)
}

func (f *Formatter) Prompt(msg string) {
	f.printf("%s ", msg)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		f.printf("  ✅ %s: %s\n", name, detail)
	} else {
		f.printf("  ❌ %s: %s\n", name, detail)
	}
}
