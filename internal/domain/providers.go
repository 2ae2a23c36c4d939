package domain

// PositionHealthProvider is the boundary to the live monitoring component.
// The engine only consumes it; implementations live outside this repository.
type PositionHealthProvider interface {
	// GetPositionHealth returns the current health factor for a position.
	GetPositionHealth(positionID string) (float64, error)

	// GetAlerts returns outstanding alerts, optionally filtered by position
	// id ("" means all positions).
	GetAlerts(positionID string) ([]Alert, error)
}
