package domain

import "time"

// DateLayout is the calendar-day format used in every analytics payload.
const DateLayout = "2006-01-02"

// AnalyticsWindow selects the days an analytics request covers: either the
// last Days days ending today, or the explicit StartDate..EndDate range
// (both inclusive). Days is ignored when both dates are set.
type AnalyticsWindow struct {
	Days      int
	StartDate time.Time
	EndDate   time.Time
}

// DateRange is a resolved half-open [Start, End) range of local calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(day time.Time) bool {
	return !day.Before(r.Start) && day.Before(r.End)
}

// Bucket is one slot of a partitioned date range, half-open like DateRange.
type Bucket struct {
	Start time.Time
	End   time.Time
}

type StreakState struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

type CompletionStats struct {
	TrackedDays       int      `json:"tracked_days"`
	CompletedDays     int      `json:"completed_days"`
	CompletionRate    float64  `json:"completion_rate"`
	AverageMood       *float64 `json:"average_mood,omitempty"`
	AverageDifficulty *float64 `json:"average_difficulty,omitempty"`
}

type InsightLevel string

const (
	InsightSuccess InsightLevel = "success"
	InsightWarning InsightLevel = "warning"
	InsightDanger  InsightLevel = "danger"
	InsightInfo    InsightLevel = "info"
)

type Insight struct {
	Type    InsightLevel `json:"type"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
}

type Milestone struct {
	Days      int `json:"days"`
	Remaining int `json:"remaining"`
}

type Prediction struct {
	StreakTarget         int        `json:"streak_target"`
	CurrentStreak        int        `json:"current_streak"`
	DaysRemaining        int        `json:"days_remaining"`
	EstimatedDate        *string    `json:"estimated_date,omitempty"`
	NextMilestone        *Milestone `json:"next_milestone,omitempty"`
	ProbabilityOfSuccess int        `json:"probability_of_success"`
}

type HabitAnalytics struct {
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	WindowDays int             `json:"window_days"`
	Streak     StreakState     `json:"streak"`
	Stats      CompletionStats `json:"stats"`
	Insights   []Insight       `json:"insights"`
	Prediction Prediction      `json:"prediction"`
}

type CategoryBreakdown struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

type HabitSummary struct {
	HabitID        string   `json:"habit_id"`
	Name           string   `json:"name"`
	Category       Category `json:"category"`
	Color          string   `json:"color"`
	CurrentStreak  int      `json:"current_streak"`
	CompletedDays  int      `json:"completed_days"`
	CompletionRate float64  `json:"completion_rate"`
}

type OverviewStats struct {
	StartDate         string                         `json:"start_date"`
	EndDate           string                         `json:"end_date"`
	WindowDays        int                            `json:"window_days"`
	TotalHabits       int                            `json:"total_habits"`
	ActiveHabits      int                            `json:"active_habits"`
	TotalEntries      int                            `json:"total_entries"`
	CompletedEntries  int                            `json:"completed_entries"`
	PossibleEntries   int                            `json:"possible_entries"`
	CompletedToday    int                            `json:"completed_today"`
	CompletionRate    float64                        `json:"completion_rate"`
	BestCurrentStreak int                            `json:"best_current_streak"`
	AverageMood       *float64                       `json:"average_mood,omitempty"`
	AverageDifficulty *float64                       `json:"average_difficulty,omitempty"`
	Categories        map[Category]CategoryBreakdown `json:"categories"`
	Habits            []HabitSummary                 `json:"habits"`
}

type HeatmapHabitDetail struct {
	HabitID   string   `json:"habit_id"`
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	Category  Category `json:"category"`
	Completed bool     `json:"completed"`
}

type HeatmapCell struct {
	Date            string               `json:"date"`
	TotalHabits     int                  `json:"total_habits"`
	CompletedHabits int                  `json:"completed_habits"`
	CompletionRate  float64              `json:"completion_rate"`
	Habits          []HeatmapHabitDetail `json:"habits"`
}

type Heatmap struct {
	Year int           `json:"year"`
	Days []HeatmapCell `json:"days"`
}

type TrendBucket struct {
	PeriodStart      string                         `json:"period_start"`
	PeriodEnd        string                         `json:"period_end"`
	TotalEntries     int                            `json:"total_entries"`
	CompletedEntries int                            `json:"completed_entries"`
	CompletionRate   float64                        `json:"completion_rate"`
	Categories       map[Category]CategoryBreakdown `json:"categories"`
}

type TrendReport struct {
	Period  string        `json:"period"`
	GroupBy string        `json:"group_by"`
	Buckets []TrendBucket `json:"buckets"`
}

// StreakEvent is what the streak worker broadcasts after a habit's
// entries change.
type StreakEvent struct {
	UserID     string      `json:"user_id"`
	HabitID    string      `json:"habit_id"`
	HabitName  string      `json:"habit_name"`
	Streak     StreakState `json:"streak"`
	ComputedAt time.Time   `json:"computed_at"`
}
