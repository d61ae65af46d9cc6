package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jscenario/internal/domain"
	"jscenario/internal/i18n"
	"jscenario/internal/providers/jscenario"
	"jscenario/internal/score"
)

func TestSubmitterNeverCallsNetworkOnValidationFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := writeSizedFile(t, dir, "ok.wav", 4096)
	api := &fakeInteractionAPI{}
	submitter := NewInteractionSubmitter(api, i18n.New("ko"), SubmitterConfig{})

	cases := []struct {
		scenarioID string
		path       string
		want       error
	}{
		{"", valid, ErrEmptyScenarioID},
		{"scenario_01", valid, ErrMalformedScenarioID},
		{"scenario_001", writeSizedFile(t, dir, "a.txt", 4096), ErrAudioExtension},
		{"scenario_001", writeSizedFile(t, dir, "b.wav", 10), ErrAudioTooSmall},
		{"scenario_001", dir, ErrAudioNotRegular},
		{"scenario_001", "", ErrAudioMissing},
	}
	for _, tc := range cases {
		results := collect(submitter.Submit(context.Background(), tc.scenarioID, "", tc.path))
		if len(results) != 2 || results[0].Status != domain.ResultLoading {
			t.Fatalf("expected loading then terminal, got %+v", results)
		}
		last := results[1]
		if last.Status != domain.ResultError || last.Err.Kind != domain.ErrorKindValidation {
			t.Fatalf("expected validation failure for %q/%q, got %+v", tc.scenarioID, tc.path, last)
		}
		if !errors.Is(last.Err, tc.want) {
			t.Fatalf("expected %v, got %v", tc.want, last.Err.Cause)
		}
	}
	if api.callCount() != 0 {
		t.Fatalf("expected zero network calls, got %d", api.callCount())
	}
}

func TestSubmitterScenarioASuccessfulEvaluation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil || r.FormValue("scenario_id") != "scenario_002" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"interaction_id":"int_a","scenario_id":"scenario_002","evaluation":{"overall_score":88,"pronunciation":{"name":"발음","score":90,"description":"","suggestions":[]},"grammar":{"name":"문법","score":86,"description":"","suggestions":[]},"appropriateness":{"name":"적절성","score":88,"description":"","suggestions":[]},"transcription":"すみません"},"ai_response_text":"はい","exp_earned":10,"timestamp":"2026-03-01T09:00:00","success":true,"message":"평가가 완료되었습니다"}`)
	}))
	defer srv.Close()

	client, err := jscenario.NewClient(jscenario.Config{BaseURL: srv.URL + "/api/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	submitter := NewInteractionSubmitter(client, i18n.New("ko"), SubmitterConfig{})
	audio := writeSizedFile(t, t.TempDir(), "take.wav", 500*1024)

	results := collect(submitter.Submit(context.Background(), "scenario_002", "user 1", audio))
	if len(results) != 2 || results[0].Status != domain.ResultLoading {
		t.Fatalf("expected loading then terminal, got %d results", len(results))
	}
	interaction, err := results[1].Unpack()
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if interaction.Evaluation.OverallScore != 88 {
		t.Fatalf("unexpected score: %d", interaction.Evaluation.OverallScore)
	}
	p := score.Project(interaction.Evaluation.OverallScore)
	if p.Color != score.Green.Hex() || score.BucketFor(88) <= score.BucketGood {
		t.Fatalf("unexpected projection for 88: %+v", p)
	}
}

func TestSubmitterScenarioBOversizedFile(t *testing.T) {
	t.Parallel()

	api := &fakeInteractionAPI{}
	submitter := NewInteractionSubmitter(api, i18n.New("ko"), SubmitterConfig{})
	audio := writeSizedFile(t, t.TempDir(), "long.wav", 15<<20)

	r := domain.Await(submitter.Submit(context.Background(), "scenario_002", "", audio))
	if r.Status != domain.ResultError || !errors.Is(r.Err, ErrAudioTooLarge) {
		t.Fatalf("expected ErrAudioTooLarge, got %+v", r)
	}
	if r.Err.Message != "파일 크기는 10MB 이하여야 합니다" {
		t.Fatalf("unexpected message: %q", r.Err.Message)
	}
	if api.callCount() != 0 {
		t.Fatalf("expected no request to be sent")
	}
}

func TestSubmitterCapsConfiguredUploadLimit(t *testing.T) {
	t.Parallel()

	api := &fakeInteractionAPI{}
	limits := UploadLimits{MinBytes: 1 << 10, MaxBytes: 50 << 20}
	submitter := NewInteractionSubmitter(api, i18n.New("en"), SubmitterConfig{Limits: limits})
	audio := writeSizedFile(t, t.TempDir(), "long.wav", 15<<20)

	r := domain.Await(submitter.Submit(context.Background(), "scenario_002", "", audio))
	if r.Status != domain.ResultError || !errors.Is(r.Err, ErrAudioTooLarge) {
		t.Fatalf("expected ErrAudioTooLarge, got %+v", r)
	}
	if api.callCount() != 0 {
		t.Fatalf("expected no request to be sent")
	}
}

func TestSubmitterScenarioCMalformedID(t *testing.T) {
	t.Parallel()

	api := &fakeInteractionAPI{}
	submitter := NewInteractionSubmitter(api, i18n.New("ko"), SubmitterConfig{})
	audio := writeSizedFile(t, t.TempDir(), "take.wav", 4096)

	r := domain.Await(submitter.Submit(context.Background(), "not_valid", "", audio))
	if r.Status != domain.ResultError || !errors.Is(r.Err, ErrMalformedScenarioID) {
		t.Fatalf("expected ErrMalformedScenarioID, got %+v", r)
	}
	if errors.Is(r.Err, ErrEmptyScenarioID) {
		t.Fatalf("malformed id must not report as empty")
	}
	if api.callCount() != 0 {
		t.Fatalf("expected no request to be sent")
	}
}

func TestSubmitterScenarioDServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail":"인터랙션 처리 중 오류가 발생했습니다: boom"}`)
	}))
	defer srv.Close()

	client, err := jscenario.NewClient(jscenario.Config{BaseURL: srv.URL + "/api/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	submitter := NewInteractionSubmitter(client, i18n.New("ko"), SubmitterConfig{})
	audio := writeSizedFile(t, t.TempDir(), "take.wav", 4096)

	r := domain.Await(submitter.Submit(context.Background(), "scenario_002", "", audio))
	if r.Status != domain.ResultError {
		t.Fatalf("expected error, got %+v", r)
	}
	if r.Err.Kind != domain.ErrorKindServer || r.Err.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected failure: %+v", r.Err)
	}
	if r.Err.Message != "서버 오류가 발생했습니다" {
		t.Fatalf("expected generic server message, got %q", r.Err.Message)
	}
	var statusErr *domain.StatusError
	if !errors.As(r.Err, &statusErr) || statusErr.Detail == "" {
		t.Fatalf("expected cause to be preserved, got %v", r.Err.Cause)
	}
}

func TestSubmitterMapsRejectionAndConnectivity(t *testing.T) {
	t.Parallel()

	audio := writeSizedFile(t, t.TempDir(), "take.wav", 4096)
	tr := i18n.New("ko")

	rejected := NewInteractionSubmitter(&fakeInteractionAPI{err: &domain.RejectedError{Message: "평가 처리에 실패했습니다"}}, tr, SubmitterConfig{})
	r := domain.Await(rejected.Submit(context.Background(), "scenario_001", "", audio))
	if r.Err == nil || r.Err.Message != "평가 처리에 실패했습니다" {
		t.Fatalf("expected server-supplied message, got %+v", r.Err)
	}

	generic := NewInteractionSubmitter(&fakeInteractionAPI{err: &domain.RejectedError{}}, tr, SubmitterConfig{})
	r = domain.Await(generic.Submit(context.Background(), "scenario_001", "", audio))
	if r.Err == nil || r.Err.Message != "알 수 없는 오류" {
		t.Fatalf("expected generic failure message, got %+v", r.Err)
	}

	parse := NewInteractionSubmitter(&fakeInteractionAPI{err: &domain.DecodeError{Err: errors.New("unexpected EOF")}}, tr, SubmitterConfig{})
	r = domain.Await(parse.Submit(context.Background(), "scenario_001", "", audio))
	if r.Err == nil || r.Err.Kind != domain.ErrorKindParse || r.Err.Message != "서버 오류가 발생했습니다" {
		t.Fatalf("expected parse failure shown as server error, got %+v", r.Err)
	}

	cause := errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
	offline := NewInteractionSubmitter(&fakeInteractionAPI{err: cause}, tr, SubmitterConfig{})
	r = domain.Await(offline.Submit(context.Background(), "scenario_001", "", audio))
	if r.Err == nil || r.Err.Kind != domain.ErrorKindConnectivity || r.Err.Message != "네트워크 연결을 확인해주세요" {
		t.Fatalf("expected connectivity failure, got %+v", r.Err)
	}
	if !errors.Is(r.Err, cause) {
		t.Fatalf("expected transport cause to be preserved")
	}
}

func collect[T any](ch <-chan domain.Result[T]) []domain.Result[T] {
	var out []domain.Result[T]
	for r := range ch {
		out = append(out, r)
	}
	return out
}
