// Package regime restricts match dates to calendar regimes: earnings
// season, Fed meetings, options expiration, and plain weekday or month
// membership. Filters are pure date predicates composed as a logical AND.
package regime

import (
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/market-patterns/internal/metrics"
	"github.com/yourusername/market-patterns/internal/models"
)

// fedMeetingWindowDays is the half-width of the FED_MEETING window.
const fedMeetingWindowDays = 3

// window is one inclusive calendar regime interval.
type window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Service composes contextual date filters over a produced match list.
// Regime tables are memoized per (start,end) year range; the cache is the
// only shared mutable cross-call state and go-cache guards it internally.
type Service struct {
	tables *cache.Cache
	logger *logrus.Logger
}

// NewService creates the filter service with a bounded memoization window.
func NewService(logger *logrus.Logger) *Service {
	return &Service{
		tables: cache.New(time.Hour, 2*time.Hour),
		logger: logger,
	}
}

// Apply narrows matches through every requested filter sequentially.
// Weekday and month membership come from the request's additional filters.
func (s *Service) Apply(matches []models.MatchEvent, filters []models.Regime, days []time.Weekday, months []time.Month) ([]models.MatchEvent, error) {
	if len(filters) == 0 && len(days) == 0 && len(months) == 0 {
		return matches, nil
	}

	startYear, endYear := yearRange(matches)
	filtered := matches
	for _, filter := range filters {
		before := len(filtered)
		var err error
		filtered, err = s.applyOne(filtered, filter, startYear, endYear, days, months)
		if err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{
			"filter": filter,
			"before": before,
			"after":  len(filtered),
		}).Debug("Applied contextual filter")
	}

	// Additional day/month filters apply even without their regime names.
	if len(days) > 0 && !containsRegime(filters, models.RegimeDayOfWeek) {
		filtered = filterByWeekday(filtered, days)
	}
	if len(months) > 0 && !containsRegime(filters, models.RegimeMonthOfYear) {
		filtered = filterByMonth(filtered, months)
	}
	return filtered, nil
}

func (s *Service) applyOne(matches []models.MatchEvent, filter models.Regime, startYear, endYear int, days []time.Weekday, months []time.Month) ([]models.MatchEvent, error) {
	switch filter {
	case models.RegimeEarningsSeason:
		return filterByWindows(matches, s.earningsWindows(startYear, endYear)), nil
	case models.RegimeFedMeeting:
		return filterByWindows(matches, s.fedMeetingWindows(startYear, endYear)), nil
	case models.RegimeOptionsExpiration:
		return filterByWindows(matches, s.expirationWindows(startYear, endYear)), nil
	case models.RegimeDayOfWeek:
		return filterByWeekday(matches, days), nil
	case models.RegimeMonthOfYear:
		return filterByMonth(matches, months), nil
	default:
		return nil, fmt.Errorf("%w: unsupported context filter %q", models.ErrInvalidParams, filter)
	}
}

// earningsWindows builds the four fixed reporting windows per year:
// mid-Apr to mid-May (Q1), mid-Jul to mid-Aug (Q2), mid-Oct to mid-Nov
// (Q3), and mid-Jan to mid-Feb of the following year (Q4).
func (s *Service) earningsWindows(startYear, endYear int) []window {
	return s.memoized("earnings", startYear, endYear, func() []window {
		var windows []window
		// The prior year's Q4 window spills into mid-Jan of startYear.
		for year := startYear - 1; year <= endYear; year++ {
			windows = append(windows,
				window{date(year, time.April, 15), date(year, time.May, 15), "Q1"},
				window{date(year, time.July, 15), date(year, time.August, 15), "Q2"},
				window{date(year, time.October, 15), date(year, time.November, 15), "Q3"},
				window{date(year+1, time.January, 15), date(year+1, time.February, 15), "Q4"},
			)
		}
		return windows
	})
}

func (s *Service) fedMeetingWindows(startYear, endYear int) []window {
	return s.memoized("fed", startYear, endYear, func() []window {
		var windows []window
		for _, meeting := range parsedMeetingDates() {
			if meeting.Year() < startYear || meeting.Year() > endYear {
				continue
			}
			windows = append(windows, window{
				Start: meeting.AddDate(0, 0, -fedMeetingWindowDays),
				End:   meeting.AddDate(0, 0, fedMeetingWindowDays),
				Label: "FOMC",
			})
		}
		return windows
	})
}

// expirationWindows covers the 3rd Friday of every month, four days before
// through two days after. Quarterly months get the triple-witching label.
func (s *Service) expirationWindows(startYear, endYear int) []window {
	return s.memoized("opex", startYear, endYear, func() []window {
		var windows []window
		for year := startYear; year <= endYear; year++ {
			for month := time.January; month <= time.December; month++ {
				expiry := thirdFriday(year, month)
				label := "opex"
				if isQuarterlyExpiration(month) {
					label = "triple_witching"
				}
				windows = append(windows, window{
					Start: expiry.AddDate(0, 0, -4),
					End:   expiry.AddDate(0, 0, 2),
					Label: label,
				})
			}
		}
		return windows
	})
}

func (s *Service) memoized(kind string, startYear, endYear int, build func() []window) []window {
	key := fmt.Sprintf("%s:%d:%d", kind, startYear, endYear)
	if cached, ok := s.tables.Get(key); ok {
		if windows, ok := cached.([]window); ok {
			return windows
		}
	}
	windows := build()
	s.tables.Set(key, windows, cache.DefaultExpiration)
	metrics.RegimeCacheEntries.Set(float64(s.tables.ItemCount()))
	return windows
}

func filterByWindows(matches []models.MatchEvent, windows []window) []models.MatchEvent {
	filtered := make([]models.MatchEvent, 0, len(matches))
	for _, match := range matches {
		if inAnyWindow(match.Date, windows) {
			filtered = append(filtered, match)
		}
	}
	return filtered
}

func inAnyWindow(t time.Time, windows []window) bool {
	day := date(t.Year(), t.Month(), t.Day())
	for _, w := range windows {
		if !day.Before(w.Start) && !day.After(w.End) {
			return true
		}
	}
	return false
}

func filterByWeekday(matches []models.MatchEvent, days []time.Weekday) []models.MatchEvent {
	if len(days) == 0 {
		return matches
	}
	allowed := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		allowed[d] = true
	}
	filtered := make([]models.MatchEvent, 0, len(matches))
	for _, match := range matches {
		if allowed[match.Date.Weekday()] {
			filtered = append(filtered, match)
		}
	}
	return filtered
}

func filterByMonth(matches []models.MatchEvent, months []time.Month) []models.MatchEvent {
	if len(months) == 0 {
		return matches
	}
	allowed := make(map[time.Month]bool, len(months))
	for _, m := range months {
		allowed[m] = true
	}
	filtered := make([]models.MatchEvent, 0, len(matches))
	for _, match := range matches {
		if allowed[match.Date.Month()] {
			filtered = append(filtered, match)
		}
	}
	return filtered
}

func yearRange(matches []models.MatchEvent) (int, int) {
	if len(matches) == 0 {
		year := time.Now().Year()
		return year, year
	}
	start := matches[0].Date.Year()
	end := start
	for _, match := range matches[1:] {
		year := match.Date.Year()
		if year < start {
			start = year
		}
		if year > end {
			end = year
		}
	}
	return start, end
}

func containsRegime(filters []models.Regime, target models.Regime) bool {
	for _, f := range filters {
		if f == target {
			return true
		}
	}
	return false
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
