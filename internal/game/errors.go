package game

import "errors"

var (
	ErrPlayerCount   = errors.New("player count out of range")
	ErrImposterCount = errors.New("imposter count out of range")
	ErrSuspectCount  = errors.New("suspect count must match imposter count")
	ErrBadTransition = errors.New("invalid state transition")
)
