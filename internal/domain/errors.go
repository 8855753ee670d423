package domain

import "errors"

var (
	// ErrEmptyDataset is returned when a computation needs at least one product or sale.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrUnknownSupplier is returned when a supplier has no lead time.
	ErrUnknownSupplier = errors.New("unknown supplier")

	// ErrInvalidHorizon is returned for a negative or oversized forecast horizon.
	ErrInvalidHorizon = errors.New("invalid forecast horizon")
)
