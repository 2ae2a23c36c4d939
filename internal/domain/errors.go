package domain

import "errors"

// Error taxonomy for the risk engine. Computation errors are always returned
// to the caller; the deliberate fallbacks (missing shock mapping, missing
// historical price point, missing correlation matrix) are not errors.
var (
	// ErrPortfolioNotFound indicates an unregistered portfolio id.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrEmptyPortfolio indicates a portfolio with zero total value; used as
	// a divide-by-zero guard before weight computations.
	ErrEmptyPortfolio = errors.New("portfolio has no value")

	// ErrInvalidConfiguration indicates malformed simulation parameters,
	// e.g. a negative volatility or a non-positive iteration count.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrCalculationError indicates a generic numeric failure such as a
	// distribution that could not be constructed.
	ErrCalculationError = errors.New("calculation error")
)
