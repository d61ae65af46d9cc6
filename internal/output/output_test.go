package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"jscenario/internal/domain"
	"jscenario/internal/i18n"
	"jscenario/internal/score"
	"jscenario/internal/usecase"
)

func TestFormatterTickLineIsTerminated(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := NewFormatter(&buf)
	f.SetTranslator(i18n.New("en"))

	f.RecordingTick(1)
	f.RecordingTick(2)
	f.RecordingCaptured(domain.RecordedAudio{Duration: 2400 * time.Millisecond})

	out := buf.String()
	if strings.Count(out, "\r") != 2 {
		t.Fatalf("expected in-place ticks, got %q", out)
	}
	if !strings.Contains(out, "\n⏹️") {
		t.Fatalf("expected captured line on its own line, got %q", out)
	}
}

func TestFormatterFeedback(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := NewFormatter(&buf)
	f.SetTranslator(i18n.New("ko"))

	f.Feedback(usecase.FeedbackView{
		Interaction: domain.Interaction{
			ScenarioID: "scenario_001_1",
			Evaluation: domain.EvaluationResult{
				OverallScore:  88,
				Pronunciation: domain.FeedbackCategory{Score: 90, Suggestions: []string{"장음"}},
				Transcription: "すみません",
			},
			AIResponseText: "はい",
		},
		Projection:     score.Project(88),
		Summary:        "좋아요",
		HasNextChapter: true,
		NextChapterID:  "scenario_001_2",
	})

	out := buf.String()
	for _, want := range []string{"88", "#", "발음", "· 장음", "すみません", "좋아요", "scenario_001_2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in feedback output:\n%s", want, out)
		}
	}
}

func TestFormatterSetupCheckAndStats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := NewFormatter(&buf)
	f.SetTranslator(i18n.New("en"))

	f.SetupCheck("ffmpeg", false, "not found")
	f.Stats(domain.Stats{CompletedToday: 2, DailyGoal: 3, Streak: 4, TotalScenarios: 9, AverageScore: 77})

	out := buf.String()
	if !strings.Contains(out, "❌ ffmpeg: not found") {
		t.Fatalf("unexpected setup check output: %q", out)
	}
	if !strings.Contains(out, "2/3") || !strings.Contains(out, "4") || !strings.Contains(out, "77") {
		t.Fatalf("unexpected stats output: %q", out)
	}
}
