package services

import "errors"

// Dashboard service errors
var (
	// Dataset errors
	ErrNoDataset     = errors.New("no dataset loaded")
	ErrDatasetDecode = errors.New("dataset decode failed")

	// Client errors
	ErrNoClientColumn  = errors.New("dataset has no client column")
	ErrClientNotFound  = errors.New("client not found")
	ErrNoDataForClient = errors.New("no data for client")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
