package apperror

import "errors"

var (
	ErrAuthentication  = errors.New("signature does not verify")
	ErrBoardFull       = errors.New("column is full")
	ErrOutOfOrder      = errors.New("move is out of order")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrInvalidColumn   = errors.New("invalid column index")
	ErrInvalidDie      = errors.New("invalid die value")
	ErrGameFinished    = errors.New("game is already finished")
	ErrGameNotFinished = errors.New("game is not finished")
	ErrInvalidSetup    = errors.New("invalid game setup")
	ErrSameKeys        = errors.New("players must use different keys")

	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchAlreadyExists = errors.New("match already exists")
)
