package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNicknameTaken     = errors.New("nickname is already taken")
	ErrNoPendingNickname = errors.New("no pending nickname")
	ErrInsufficientCoins = errors.New("insufficient coins")

	// Storage errors
	ErrConflict = errors.New("concurrent update conflict")
)
