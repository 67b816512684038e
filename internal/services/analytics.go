package services

import (
	"math"
	"time"

	"github.com/arnold/goalmate-api/internal/models"
)

const (
	maxStreakDays    = 30
	timeSeriesMonths = 6
	monthKeyLayout   = "2006-01"
)

type Analytics struct {
	CategoryData       map[models.Category]int   `json:"categoryData"`
	MonthlyProgress    map[string]int            `json:"monthlyProgress"`
	CompletionRate     float64                   `json:"completionRate"`
	Streak             int                       `json:"streak"`
	TimeSeries         []MonthPoint              `json:"timeSeries"`
	StatusDistribution map[models.GoalStatus]int `json:"statusDistribution"`
	OverdueGoals       int                       `json:"overdueGoals"`
	TotalScore         int                       `json:"totalScore"`
}

// MonthPoint summarizes the goals created in one calendar month.
type MonthPoint struct {
	Month    string `json:"month"`
	Year     int    `json:"year"`
	Goals    int    `json:"goals"`
	Progress int    `json:"progress"`
	Score    int    `json:"score"`
}

// Aggregate derives a user's dashboard statistics from their goals. Calendar
// days and months are taken in loc. Statuses are re-derived for now.
func Aggregate(goals []models.Goal, now time.Time, loc *time.Location) Analytics {
	if loc == nil {
		loc = time.UTC
	}

	a := Analytics{
		CategoryData:       make(map[models.Category]int),
		MonthlyProgress:    make(map[string]int),
		StatusDistribution: make(map[models.GoalStatus]int, len(models.GoalStatuses)),
	}
	for _, s := range models.GoalStatuses {
		a.StatusDistribution[s] = 0
	}

	completed := 0
	for i := range goals {
		g := goals[i]
		g.Refresh(now)

		a.CategoryData[g.Category]++
		a.MonthlyProgress[g.CreatedAt.In(loc).Format(monthKeyLayout)] += g.CurrentProgress
		a.StatusDistribution[g.Status]++
		a.TotalScore += ScoreDelta(g.CurrentProgress)

		if g.CurrentProgress == models.MaxProgress {
			completed++
		}
		if g.IsOverdue(now) {
			a.OverdueGoals++
		}
	}

	if len(goals) > 0 {
		a.CompletionRate = float64(completed) / float64(len(goals)) * 100
	}
	a.Streak = streak(goals, now, loc)
	a.TimeSeries = timeSeries(goals, now, loc)

	return a
}

// streak counts consecutive days with at least one ledger entry, walking back
// from today. It stops at the first empty day or after maxStreakDays.
func streak(goals []models.Goal, now time.Time, loc *time.Location) int {
	active := make(map[string]struct{})
	for _, g := range goals {
		for _, u := range g.ProgressUpdates {
			active[u.Date.In(loc).Format(time.DateOnly)] = struct{}{}
		}
	}

	today := now.In(loc)
	y, m, d := today.Date()

	count := 0
	for i := 0; i < maxStreakDays; i++ {
		day := time.Date(y, m, d-i, 0, 0, 0, 0, loc).Format(time.DateOnly)
		if _, ok := active[day]; !ok {
			break
		}
		count++
	}
	return count
}

// timeSeries covers the trailing months up to and including the current one,
// oldest first.
func timeSeries(goals []models.Goal, now time.Time, loc *time.Location) []MonthPoint {
	type bucket struct{ goals, progress int }

	buckets := make(map[string]*bucket)
	for _, g := range goals {
		key := g.CreatedAt.In(loc).Format(monthKeyLayout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.goals++
		b.progress += g.CurrentProgress
	}

	y, m, _ := now.In(loc).Date()
	points := make([]MonthPoint, 0, timeSeriesMonths)
	for i := timeSeriesMonths - 1; i >= 0; i-- {
		month := time.Date(y, m-time.Month(i), 1, 0, 0, 0, 0, loc)

		p := MonthPoint{Month: month.Format("Jan"), Year: month.Year()}
		if b, ok := buckets[month.Format(monthKeyLayout)]; ok {
			avg := float64(b.progress) / float64(b.goals)
			p.Goals = b.goals
			p.Progress = int(math.Round(avg))
			p.Score = b.goals*10 + int(math.Round(avg*0.5))
		}
		points = append(points, p)
	}
	return points
}
