package devserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"jscenario/internal/audio"
	"jscenario/internal/domain"
)

const maxUploadBytes = domain.MaxUploadBytes

// Server is a local stand-in for the J-Scenario backend. It serves fixed
// scenarios and returns a deterministic evaluation for every upload.
type Server struct {
	scenarios []domain.Scenario
	logger    *log.Logger
	now       func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Server)

func WithScenarios(scenarios []domain.Scenario) Option {
	return func(s *Server) { s.scenarios = scenarios }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(opts ...Option) *Server {
	s := &Server{
		scenarios: SeedScenarios(),
		logger:    log.New(io.Discard, "", 0),
		now:       time.Now,
		rnd:       rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router serving everything under /api.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scenarios/random", s.randomScenario).Methods("GET")
	api.HandleFunc("/scenarios/{scenario_id}", s.scenarioByID).Methods("GET")
	api.HandleFunc("/interactions", s.createInteraction).Methods("POST")
	r.Use(s.logRequests)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

type scenarioResponse struct {
	Scenario *domain.Scenario `json:"scenario"`
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
}

type interactionResponse struct {
	domain.Interaction
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) randomScenario(w http.ResponseWriter, r *http.Request) {
	if len(s.scenarios) == 0 {
		respondWithError(w, http.StatusInternalServerError, "사용 가능한 시나리오가 없습니다")
		return
	}
	s.mu.Lock()
	scenario := s.scenarios[s.rnd.Intn(len(s.scenarios))]
	s.mu.Unlock()

	respondWithJSON(w, http.StatusOK, scenarioResponse{
		Scenario: &scenario,
		Success:  true,
		Message:  "시나리오를 성공적으로 조회했습니다",
	})
}

func (s *Server) scenarioByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["scenario_id"]
	for _, scenario := range s.scenarios {
		if scenario.ID == id {
			scenario := scenario
			respondWithJSON(w, http.StatusOK, scenarioResponse{
				Scenario: &scenario,
				Success:  true,
				Message:  "시나리오를 성공적으로 조회했습니다",
			})
			return
		}
	}
	respondWithError(w, http.StatusNotFound, "시나리오를 찾을 수 없습니다: "+id)
}

func (s *Server) createInteraction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "잘못된 요청 형식입니다")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	scenarioID := r.FormValue("scenario_id")
	if !s.known(scenarioID) {
		respondWithError(w, http.StatusNotFound, "시나리오를 찾을 수 없습니다: "+scenarioID)
		return
	}

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "음성 파일이 필요합니다")
		return
	}
	defer file.Close()
	if header.Size > maxUploadBytes {
		respondWithError(w, http.StatusRequestEntityTooLarge, "파일 크기가 10MB를 초과했습니다")
		return
	}

	seconds := 0.0
	if strings.EqualFold(filepath.Ext(header.Filename), ".wav") {
		if format, dataSize, err := audio.ReadWAVHeader(file); err == nil && format.ByteRate() > 0 {
			seconds = float64(dataSize) / float64(format.ByteRate())
		}
	}

	interaction := s.evaluate(scenarioID, header.Size, seconds)
	respondWithJSON(w, http.StatusOK, interactionResponse{
		Interaction: interaction,
		Success:     true,
		Message:     "평가가 완료되었습니다",
	})
}

func (s *Server) known(id string) bool {
	for _, scenario := range s.scenarios {
		if scenario.ID == id {
			return true
		}
	}
	return false
}

// evaluate scores longer takes higher, up to a few seconds of speech.
func (s *Server) evaluate(scenarioID string, size int64, seconds float64) domain.Interaction {
	overall := 60 + int(seconds*8)
	if seconds == 0 {
		overall = 60 + int(size%30)
	}
	if overall > 95 {
		overall = 95
	}

	corrected := "すみません、財布をなくしてしまいました。"
	return domain.Interaction{
		InteractionID: "int_" + uuid.NewString(),
		ScenarioID:    scenarioID,
		Evaluation: domain.EvaluationResult{
			OverallScore: overall,
			Pronunciation: domain.FeedbackCategory{
				Name:        "발음",
				Score:       clampScore(overall + 3),
				Description: "발음이 전반적으로 명확합니다.",
				Suggestions: []string{"장음을 조금 더 길게 발음해 보세요."},
			},
			Grammar: domain.FeedbackCategory{
				Name:        "문법",
				Score:       clampScore(overall - 4),
				Description: "조사 사용을 확인해 보세요.",
				Suggestions: []string{"「を」와 「が」의 쓰임을 구분해 보세요."},
			},
			Appropriateness: domain.FeedbackCategory{
				Name:        "적절성",
				Score:       clampScore(overall),
				Description: "상황에 맞는 표현을 사용했습니다.",
				Suggestions: []string{"정중한 표현을 한 번 더 덧붙여 보세요."},
			},
			Transcription:    "すみません、財布をなくしました。",
			CorrectedText:    &corrected,
			ExampleResponses: []string{"すみません、財布を落としてしまったんですが。"},
		},
		AIResponseText: "かしこまりました。財布の色と形を教えていただけますか。",
		ExpEarned:      overall / 10,
		Timestamp:      s.now().UTC().Format("2006-01-02T15:04:05"),
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"detail":%q}`, err.Error()), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, detail string) {
	respondWithJSON(w, code, map[string]string{"detail": detail})
}

// SeedScenarios returns the built-in scenario set, including the three
// chapters of scenario_001.
func SeedScenarios() []domain.Scenario {
	return []domain.Scenario{
		{
			ID:               "scenario_001_1",
			Category:         domain.CategoryEmergency,
			Title:            "역에서 지갑 분실 (1)",
			Description:      "電車の駅で財布をなくしました。",
			Mission:          "역무원에게 분실 신고를 하고 지갑의 특징을 설명하세요.",
			ImageURL:         "/static/images/scenario_001.png",
			DifficultyLevel:  2,
			ExpectedKeywords: []string{"財布", "なくしました", "黒い"},
		},
		{
			ID:               "scenario_001_2",
			Category:         domain.CategoryEmergency,
			Title:            "역에서 지갑 분실 (2)",
			Description:      "駅員が似たような財布を見つけました。",
			Mission:          "본인의 지갑인지 확인할 수 있도록 안의 내용물을 설명하세요.",
			ImageURL:         "/static/images/scenario_001.png",
			DifficultyLevel:  2,
			ExpectedKeywords: []string{"カード", "免許証", "入っています"},
		},
		{
			ID:               "scenario_001_3",
			Category:         domain.CategoryEmergency,
			Title:            "역에서 지갑 분실 (3)",
			Description:      "財布が見つかりました。",
			Mission:          "내용물을 확인하고 역무원에게 감사 인사를 전하세요.",
			ImageURL:         "/static/images/scenario_001.png",
			DifficultyLevel:  2,
			ExpectedKeywords: []string{"ありがとうございます", "助かりました"},
		},
		{
			ID:               "scenario_002",
			Category:         domain.CategoryShopping,
			Title:            "편의점 계산",
			Description:      "コンビニでお弁当を買います。",
			Mission:          "도시락을 데워 달라고 부탁하고 봉투가 필요하다고 말하세요.",
			ImageURL:         "/static/images/scenario_002.png",
			DifficultyLevel:  1,
			ExpectedKeywords: []string{"温めて", "袋", "ください"},
		},
		{
			ID:               "scenario_003",
			Category:         domain.CategoryTravel,
			Title:            "호텔 체크인",
			Description:      "ホテルのフロントでチェックインします。",
			Mission:          "예약한 이름을 말하고 체크아웃 시간을 물어보세요.",
			ImageURL:         "/static/images/scenario_003.png",
			DifficultyLevel:  2,
			ExpectedKeywords: []string{"予約", "チェックアウト", "何時"},
		},
	}
}
