package regime

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/market-patterns/internal/models"
)

func testService() *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(log)
}

func matchOn(y int, m time.Month, d int) models.MatchEvent {
	return models.MatchEvent{
		Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Kind: models.EventPercentMove,
	}
}

func matchDates(matches []models.MatchEvent) []string {
	dates := make([]string, 0, len(matches))
	for _, m := range matches {
		dates = append(dates, models.DateKey(m.Date))
	}
	return dates
}

func TestApplyNoFiltersPassesThrough(t *testing.T) {
	s := testService()
	matches := []models.MatchEvent{matchOn(2024, time.March, 1)}

	out, err := s.Apply(matches, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, matches, out)
}

func TestFedMeetingWindow(t *testing.T) {
	s := testService()
	// 2024-03-20 is an FOMC meeting; the window is the meeting plus or
	// minus three calendar days, inclusive.
	matches := []models.MatchEvent{
		matchOn(2024, time.March, 17),
		matchOn(2024, time.March, 20),
		matchOn(2024, time.March, 23),
		matchOn(2024, time.March, 24),
	}

	out, err := s.Apply(matches, []models.Regime{models.RegimeFedMeeting}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-17", "2024-03-20", "2024-03-23"}, matchDates(out))
}

func TestOptionsExpirationWindow(t *testing.T) {
	s := testService()
	// The third Friday of March 2024 is the 15th; the window runs four
	// days before through two days after.
	matches := []models.MatchEvent{
		matchOn(2024, time.March, 5),
		matchOn(2024, time.March, 11),
		matchOn(2024, time.March, 15),
		matchOn(2024, time.March, 17),
		matchOn(2024, time.March, 25),
	}

	out, err := s.Apply(matches, []models.Regime{models.RegimeOptionsExpiration}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-11", "2024-03-15", "2024-03-17"}, matchDates(out))
}

func TestEarningsSeasonWindows(t *testing.T) {
	s := testService()
	matches := []models.MatchEvent{
		matchOn(2024, time.March, 1),   // between seasons
		matchOn(2024, time.April, 20),  // Q1 season
		matchOn(2024, time.July, 20),   // Q2 season
		matchOn(2024, time.October, 20), // Q3 season
	}

	out, err := s.Apply(matches, []models.Regime{models.RegimeEarningsSeason}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-20", "2024-07-20", "2024-10-20"}, matchDates(out))
}

func TestEarningsSeasonPriorYearSpill(t *testing.T) {
	s := testService()
	// Mid-January sits in the prior year's Q4 reporting window.
	matches := []models.MatchEvent{matchOn(2024, time.January, 20)}

	out, err := s.Apply(matches, []models.Regime{models.RegimeEarningsSeason}, nil, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestFiltersComposeAsAND(t *testing.T) {
	s := testService()
	// 2024-05-01 is both an FOMC meeting day and inside Q1 earnings
	// season; 2024-04-20 is earnings season only.
	matches := []models.MatchEvent{
		matchOn(2024, time.April, 20),
		matchOn(2024, time.May, 1),
	}

	out, err := s.Apply(matches,
		[]models.Regime{models.RegimeEarningsSeason, models.RegimeFedMeeting}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-01"}, matchDates(out))
}

func TestWeekdayAndMonthFilters(t *testing.T) {
	s := testService()
	matches := []models.MatchEvent{
		matchOn(2024, time.March, 4),  // Monday
		matchOn(2024, time.March, 5),  // Tuesday
		matchOn(2024, time.April, 1),  // Monday
	}

	out, err := s.Apply(matches, nil, []time.Weekday{time.Monday}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-04", "2024-04-01"}, matchDates(out))

	out, err = s.Apply(matches, nil, []time.Weekday{time.Monday}, []time.Month{time.March})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-04"}, matchDates(out))
}

func TestDayOfWeekRegimeUsesAdditionalDays(t *testing.T) {
	s := testService()
	matches := []models.MatchEvent{
		matchOn(2024, time.March, 4), // Monday
		matchOn(2024, time.March, 5), // Tuesday
	}

	out, err := s.Apply(matches, []models.Regime{models.RegimeDayOfWeek}, []time.Weekday{time.Tuesday}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-05"}, matchDates(out))
}

func TestUnknownRegimeRejected(t *testing.T) {
	s := testService()
	matches := []models.MatchEvent{matchOn(2024, time.March, 4)}

	_, err := s.Apply(matches, []models.Regime{"SOLSTICE"}, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidParams)
}

func TestRegimeTableMemoization(t *testing.T) {
	s := testService()
	matches := []models.MatchEvent{matchOn(2024, time.March, 20)}

	_, err := s.Apply(matches, []models.Regime{models.RegimeFedMeeting}, nil, nil)
	require.NoError(t, err)
	_, err = s.Apply(matches, []models.Regime{models.RegimeFedMeeting}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, s.tables.ItemCount(), "same year range reuses the cached table")
}

func TestThirdFriday(t *testing.T) {
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), thirdFriday(2024, time.March))
	assert.Equal(t, time.Date(2024, time.September, 20, 0, 0, 0, 0, time.UTC), thirdFriday(2024, time.September))
	assert.Equal(t, time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC), thirdFriday(2025, time.June))
}
