package domain

import "time"

// MaxUploadBytes is the largest recording the backend accepts.
const MaxUploadBytes int64 = 10 << 20

// SessionState models the record/submit lifecycle.
type SessionState string

const (
	SessionStateIdle       SessionState = "idle"
	SessionStateRecording  SessionState = "recording"
	SessionStateCaptured   SessionState = "captured"
	SessionStateSubmitting SessionState = "submitting"
	SessionStateSucceeded  SessionState = "succeeded"
	SessionStateFailed     SessionState = "failed"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonReady              SessionStateReason = "ready"
	SessionReasonScenarioChanged    SessionStateReason = "scenario_changed"
	SessionReasonRecordingStarted   SessionStateReason = "recording_started"
	SessionReasonRecordingRestarted SessionStateReason = "recording_restarted"
	SessionReasonRecordingCaptured  SessionStateReason = "recording_captured"
	SessionReasonRecordingDiscarded SessionStateReason = "recording_discarded"
	SessionReasonRecordingFailed    SessionStateReason = "recording_failed"
	SessionReasonSubmitting         SessionStateReason = "submitting"
	SessionReasonEvaluated          SessionStateReason = "evaluated"
	SessionReasonSubmissionFailed   SessionStateReason = "submission_failed"
	SessionReasonReset              SessionStateReason = "reset"
)

// ErrorCode identifies non-fatal and fatal backend errors reported to a shell.
type ErrorCode string

const (
	ErrorCodeStartup      ErrorCode = "startup"
	ErrorCodeAudioStart   ErrorCode = "audio_start"
	ErrorCodeAudioStop    ErrorCode = "audio_stop"
	ErrorCodeValidation   ErrorCode = "validation"
	ErrorCodeServer       ErrorCode = "server"
	ErrorCodeConnectivity ErrorCode = "connectivity"
	ErrorCodeProgress     ErrorCode = "progress"
)

// Category groups scenarios by situation.
type Category string

const (
	CategoryDaily        Category = "daily"
	CategoryEmergency    Category = "emergency"
	CategoryBusiness     Category = "business"
	CategoryRelationship Category = "relationship"
	CategoryTravel       Category = "travel"
	CategoryShopping     Category = "shopping"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDaily, CategoryEmergency, CategoryBusiness, CategoryRelationship, CategoryTravel, CategoryShopping:
		return true
	default:
		return false
	}
}

// Scenario is a single practice situation with a mission prompt.
type Scenario struct {
	ID                string   `json:"id"`
	Category          Category `json:"category"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Mission           string   `json:"mission"`
	ImageURL          string   `json:"image_url"`
	CharacterAudioURL *string  `json:"character_audio_url,omitempty"`
	DifficultyLevel   int      `json:"difficulty_level"`
	ExpectedKeywords  []string `json:"expected_keywords"`
}

// FeedbackCategory is one scored axis of an evaluation.
type FeedbackCategory struct {
	Name        string   `json:"name"`
	Score       int      `json:"score"`
	Description string   `json:"description"`
	Suggestions []string `json:"suggestions"`
}

// EvaluationResult is the scored feedback for one interaction.
type EvaluationResult struct {
	OverallScore     int              `json:"overall_score"`
	Pronunciation    FeedbackCategory `json:"pronunciation"`
	Grammar          FeedbackCategory `json:"grammar"`
	Appropriateness  FeedbackCategory `json:"appropriateness"`
	Transcription    string           `json:"transcription"`
	CorrectedText    *string          `json:"corrected_text,omitempty"`
	ExampleResponses []string         `json:"example_responses,omitempty"`
	CoachingAdvice   string           `json:"coaching_advice,omitempty"`
}

// Interaction is one submitted recording and the backend's answer to it.
type Interaction struct {
	InteractionID      string           `json:"interaction_id"`
	ScenarioID         string           `json:"scenario_id"`
	Evaluation         EvaluationResult `json:"evaluation"`
	AIResponseText     string           `json:"ai_response_text"`
	AIResponseAudioURL *string          `json:"ai_response_audio_url,omitempty"`
	ExpEarned          int              `json:"exp_earned"`
	Timestamp          string           `json:"timestamp"`
}

// RecordedAudio describes a finished recording on local disk.
type RecordedAudio struct {
	Path          string        `json:"path"`
	Encoding      string        `json:"encoding"`
	SampleRate    int           `json:"sampleRate"`
	Channels      int           `json:"channels"`
	BitsPerSample int           `json:"bitsPerSample"`
	Size          int64         `json:"size"`
	Duration      time.Duration `json:"duration"`
}

// Status summarizes the current session for a shell.
type Status struct {
	State          SessionState   `json:"state"`
	Active         bool           `json:"active"`
	ScenarioID     string         `json:"scenarioId,omitempty"`
	ElapsedSeconds int            `json:"elapsedSeconds"`
	Recording      *RecordedAudio `json:"recording,omitempty"`
	Interaction    *Interaction   `json:"interaction,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// Stats is the learner's local progress summary.
type Stats struct {
	CompletedToday int     `json:"completedToday"`
	DailyGoal      int     `json:"dailyGoal"`
	DailyProgress  float64 `json:"dailyProgress"`
	Streak         int     `json:"streak"`
	TotalScenarios int     `json:"totalScenarios"`
	AverageScore   int     `json:"averageScore"`
}
