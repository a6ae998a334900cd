package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EventKind identifies which detection engine a request targets.
type EventKind string

const (
	EventPercentMove     EventKind = "percent_move"
	EventReversal        EventKind = "reversal"
	EventSectorSpread    EventKind = "sector_spread"
	EventMomentumBullish EventKind = "momentum_bullish"
	EventMomentumBearish EventKind = "momentum_bearish"
	EventVolatilitySpike EventKind = "volatility_spike"
	EventMacroSignal     EventKind = "macro_signal"
	EventTOYSeasonal     EventKind = "toy_seasonal"
)

// Regime names a contextual calendar filter.
type Regime string

const (
	RegimeEarningsSeason    Regime = "EARNINGS_SEASON"
	RegimeFedMeeting        Regime = "FED_MEETING"
	RegimeOptionsExpiration Regime = "OPTIONS_EXPIRATION"
	RegimeDayOfWeek         Regime = "DAY_OF_WEEK"
	RegimeMonthOfYear       Regime = "MONTH_OF_YEAR"
)

// MomentumType selects the direction a momentum scan validates.
type MomentumType string

const (
	MomentumBullish MomentumType = "bullish"
	MomentumBearish MomentumType = "bearish"
)

// EngineParams is the tagged parameter union: one concrete type per event
// kind, validated at the request boundary before any engine runs.
type EngineParams interface {
	Kind() EventKind
	Validate() error
}

// AnalysisRequest is the structured request the coordinator consumes. It is
// produced by the excluded natural-language parsing collaborator.
type AnalysisRequest struct {
	ID             uuid.UUID      `json:"id"`
	Kind           EventKind      `json:"kind"`
	Ticker         string         `json:"ticker"`
	Params         EngineParams   `json:"params"`
	ContextFilters []Regime       `json:"context_filters,omitempty"`
	DayFilter      []time.Weekday `json:"day_filter,omitempty"`
	MonthFilter    []time.Month   `json:"month_filter,omitempty"`
}

// NewAnalysisRequest assigns a request ID and wires the parameter union.
func NewAnalysisRequest(kind EventKind, ticker string, params EngineParams) AnalysisRequest {
	return AnalysisRequest{
		ID:     uuid.New(),
		Kind:   kind,
		Ticker: ticker,
		Params: params,
	}
}

var (
	validate  = newParamValidator()
	mmddRegex = regexp.MustCompile(`^\d{1,2}-\d{1,2}$`)
)

func newParamValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mmdd", validateMMDD)
	return v
}

// validateMMDD checks the MM-DD boundary format: 1-2 digit month, dash,
// 1-2 digit day, month in [1,12], day in [1,31].
func validateMMDD(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if !mmddRegex.MatchString(value) {
		return false
	}
	parts := strings.SplitN(value, "-", 2)
	month, _ := strconv.Atoi(parts[0])
	day, _ := strconv.Atoi(parts[1])
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidParams, err)
}

// MoveDirection selects which side of a percent move qualifies.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
	MoveBoth MoveDirection = "both"
)

// PercentMoveParams configures the cumulative percent-move scan.
type PercentMoveParams struct {
	Days      int           `json:"days" validate:"gt=0"`
	Threshold float64       `json:"threshold" validate:"required"`
	Direction MoveDirection `json:"direction" validate:"oneof=up down both"`
}

func (p PercentMoveParams) Kind() EventKind { return EventPercentMove }
func (p PercentMoveParams) Validate() error { return wrapValidation(validate.Struct(p)) }

// ReversalParams configures the intraday reversal scan. Thresholds are
// percentages.
type ReversalParams struct {
	OpenThreshold  float64 `json:"open_threshold" validate:"gt=0"`
	CloseThreshold float64 `json:"close_threshold" validate:"gt=0"`
}

func (p ReversalParams) Kind() EventKind { return EventReversal }
func (p ReversalParams) Validate() error { return wrapValidation(validate.Struct(p)) }

// SectorSpreadParams configures the two-leg relative performance scan.
type SectorSpreadParams struct {
	SymbolA   string  `json:"symbol_a" validate:"required"`
	SymbolB   string  `json:"symbol_b" validate:"required"`
	Days      int     `json:"days" validate:"gt=0"`
	Threshold float64 `json:"threshold" validate:"required"`
}

func (p SectorSpreadParams) Kind() EventKind { return EventSectorSpread }
func (p SectorSpreadParams) Validate() error { return wrapValidation(validate.Struct(p)) }

// MomentumParams configures the SMA-validated momentum scan. Threshold
// bounds the worst drawdown (bullish) or rally (bearish) in percent.
type MomentumParams struct {
	SMAPeriod int          `json:"sma_period" validate:"gt=0"`
	Days      int          `json:"days" validate:"gt=0"`
	Type      MomentumType `json:"momentum_type" validate:"oneof=bullish bearish"`
	Threshold float64      `json:"threshold" validate:"gt=0"`
}

func (p MomentumParams) Kind() EventKind {
	if p.Type == MomentumBearish {
		return EventMomentumBearish
	}
	return EventMomentumBullish
}
func (p MomentumParams) Validate() error { return wrapValidation(validate.Struct(p)) }

// VolatilityParams configures the volatility-spike scan against an external
// volatility index series.
type VolatilityParams struct {
	IndexSymbol    string  `json:"index_symbol" validate:"required"`
	VIXThreshold   float64 `json:"vix_threshold" validate:"gt=0"`
	PriceCondition string  `json:"price_condition" validate:"oneof=any up down gap_down"`
	PriceThreshold float64 `json:"price_threshold" validate:"gte=0"`
}

func (p VolatilityParams) Kind() EventKind { return EventVolatilitySpike }
func (p VolatilityParams) Validate() error { return wrapValidation(validate.Struct(p)) }

// MacroParams carries externally supplied indicator values and the
// caller-supplied thresholds they are compared against. A nil threshold
// means the indicator is not part of the condition.
type MacroParams struct {
	CPI                 float64  `json:"cpi"`
	DollarIndexYTD      float64  `json:"dollar_index_ytd"`
	PolicyRate          float64  `json:"policy_rate"`
	CPIThreshold        *float64 `json:"cpi_threshold,omitempty"`
	DollarYTDThreshold  *float64 `json:"dollar_ytd_threshold,omitempty"`
	PolicyRateThreshold *float64 `json:"policy_rate_threshold,omitempty"`
}

func (p MacroParams) Kind() EventKind { return EventMacroSignal }
func (p MacroParams) Validate() error { return nil }

// TOYParams configures the turn-of-year seasonal analysis.
type TOYParams struct {
	Ticker      string  `json:"ticker" validate:"required"`
	FirstYear   int     `json:"first_year" validate:"gte=1900"`
	LastYear    int     `json:"last_year" validate:"gte=1900"`
	TOYStart    string  `json:"toy_start" validate:"mmdd"`
	TOYEnd      string  `json:"toy_end" validate:"mmdd"`
	Threshold   float64 `json:"threshold" validate:"gte=0,lte=20"`
	ForwardDays []int   `json:"forward_days,omitempty"`
}

func (p TOYParams) Kind() EventKind { return EventTOYSeasonal }

// Validate applies struct rules plus the first_year<last_year cross check.
func (p TOYParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return wrapValidation(err)
	}
	if p.FirstYear >= p.LastYear {
		return fmt.Errorf("%w: first_year %d must precede last_year %d", ErrInvalidParams, p.FirstYear, p.LastYear)
	}
	return nil
}

// ParseMonthDay splits a validated MM-DD string.
func ParseMonthDay(value string) (time.Month, int, error) {
	if !mmddRegex.MatchString(value) {
		return 0, 0, fmt.Errorf("%w: malformed month-day %q", ErrInvalidParams, value)
	}
	parts := strings.SplitN(value, "-", 2)
	month, _ := strconv.Atoi(parts[0])
	day, _ := strconv.Atoi(parts[1])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("%w: month-day %q out of range", ErrInvalidParams, value)
	}
	return time.Month(month), day, nil
}
