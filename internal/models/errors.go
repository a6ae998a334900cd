package models

import "errors"

// Sentinel errors for the request/engine boundary
var (
	ErrUnknownEventKind = errors.New("unknown event kind")
	ErrDataUnavailable  = errors.New("market data unavailable")
	ErrInvalidParams    = errors.New("invalid parameters")
	ErrSeriesNotSorted  = errors.New("series not strictly ascending by date")
	ErrEmptySeries      = errors.New("empty price series")
)
