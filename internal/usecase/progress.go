package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"jscenario/internal/domain"
	"jscenario/internal/ports"
)

const dateLayout = "2006-01-02"

const (
	keyLastDate        = "last_date"
	keyCompletedToday  = "completed_scenarios_today"
	keyTotalScenarios  = "total_scenarios"
	keyTotalScoreSum   = "total_score_sum"
	keyLastStudyDate   = "last_study_date"
	keyCurrentStreak   = "current_streak"
	keyStreakStartDate = "streak_start_date"
)

const defaultDailyGoal = 3

// ProgressTracker keeps the daily goal, streak and totals.
type ProgressTracker struct {
	store     ports.KeyValueStore
	dailyGoal int
	now       func() time.Time
}

func NewProgressTracker(store ports.KeyValueStore, dailyGoal int, now func() time.Time) *ProgressTracker {
	if dailyGoal <= 0 {
		dailyGoal = defaultDailyGoal
	}
	if now == nil {
		now = time.Now
	}
	return &ProgressTracker{store: store, dailyGoal: dailyGoal, now: now}
}

type progressState struct {
	lastDate        string
	completedToday  int
	totalScenarios  int
	totalScoreSum   int
	lastStudyDate   string
	currentStreak   int
	streakStartDate string
}

// Load returns the current stats. It rolls the daily count over on a new day
// and breaks the streak when the last study day is older than yesterday.
func (p *ProgressTracker) Load(ctx context.Context) (domain.Stats, error) {
	st, err := p.read(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	today, yesterday := p.days()

	updates := map[string]string{}
	if st.lastDate != today {
		st.lastDate = today
		st.completedToday = 0
		updates[keyLastDate] = today
		updates[keyCompletedToday] = "0"
	}
	if st.lastStudyDate != today && st.lastStudyDate != yesterday && st.currentStreak > 0 {
		st.currentStreak = 0
		st.streakStartDate = ""
		updates[keyCurrentStreak] = "0"
		updates[keyStreakStartDate] = ""
	}
	if len(updates) > 0 {
		if err := p.store.SetMany(ctx, updates); err != nil {
			return domain.Stats{}, fmt.Errorf("save progress: %w", err)
		}
	}
	return p.stats(st), nil
}

// OnScenarioCompleted records one finished scenario with its overall score.
func (p *ProgressTracker) OnScenarioCompleted(ctx context.Context, score int) (domain.Stats, error) {
	st, err := p.read(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	today, yesterday := p.days()

	if st.lastDate != today {
		st.lastDate = today
		st.completedToday = 0
	}
	if st.completedToday < p.dailyGoal {
		st.completedToday++
	}

	st.totalScenarios++
	st.totalScoreSum += score

	switch st.lastStudyDate {
	case today:
		if st.streakStartDate == "" {
			st.streakStartDate = today
		}
		if st.currentStreak == 0 {
			st.currentStreak = 1
		}
	case yesterday:
		st.currentStreak++
		if st.streakStartDate == "" {
			st.streakStartDate = yesterday
		}
	default:
		st.currentStreak = 1
		st.streakStartDate = today
	}
	st.lastStudyDate = today

	if err := p.store.SetMany(ctx, map[string]string{
		keyLastDate:        st.lastDate,
		keyCompletedToday:  strconv.Itoa(st.completedToday),
		keyTotalScenarios:  strconv.Itoa(st.totalScenarios),
		keyTotalScoreSum:   strconv.Itoa(st.totalScoreSum),
		keyLastStudyDate:   st.lastStudyDate,
		keyCurrentStreak:   strconv.Itoa(st.currentStreak),
		keyStreakStartDate: st.streakStartDate,
	}); err != nil {
		return domain.Stats{}, fmt.Errorf("save progress: %w", err)
	}
	return p.stats(st), nil
}

func (p *ProgressTracker) days() (string, string) {
	now := p.now()
	return now.Format(dateLayout), now.AddDate(0, 0, -1).Format(dateLayout)
}

func (p *ProgressTracker) stats(st progressState) domain.Stats {
	stats := domain.Stats{
		CompletedToday: st.completedToday,
		DailyGoal:      p.dailyGoal,
		DailyProgress:  float64(st.completedToday) / float64(p.dailyGoal),
		Streak:         st.currentStreak,
		TotalScenarios: st.totalScenarios,
	}
	if stats.DailyProgress > 1 {
		stats.DailyProgress = 1
	}
	if st.totalScenarios > 0 {
		stats.AverageScore = st.totalScoreSum / st.totalScenarios
	}
	return stats
}

func (p *ProgressTracker) read(ctx context.Context) (progressState, error) {
	var st progressState
	var err error
	str := func(key string) string {
		if err != nil {
			return ""
		}
		var v string
		v, _, err = p.store.Get(ctx, key)
		return v
	}
	num := func(key string) int {
		n, convErr := strconv.Atoi(str(key))
		if convErr != nil {
			return 0
		}
		return n
	}

	st.lastDate = str(keyLastDate)
	st.completedToday = num(keyCompletedToday)
	st.totalScenarios = num(keyTotalScenarios)
	st.totalScoreSum = num(keyTotalScoreSum)
	st.lastStudyDate = str(keyLastStudyDate)
	st.currentStreak = num(keyCurrentStreak)
	st.streakStartDate = str(keyStreakStartDate)
	if err != nil {
		return progressState{}, fmt.Errorf("load progress: %w", err)
	}
	return st, nil
}
