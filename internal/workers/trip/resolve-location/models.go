// internal/workers/trip/resolve-location/models.go
package resolvelocation

import "cabs-workers/internal/location"

type Input struct {
	// Role is "source" or "destination".
	Role  string `json:"role"`
	Query string `json:"query"`
	// PlaceID, when set, skips discovery and resolves the place directly.
	// This is how a caller answers a previous disambiguation.
	PlaceID string `json:"placeId,omitempty"`
}

const (
	StatusResolved             = "resolved"
	StatusDisambiguationNeeded = "disambiguation_needed"
	StatusError                = "error"
)

type Output struct {
	ResolutionStatus string             `json:"resolutionStatus"`
	Role             string             `json:"role"`
	Location         *location.Location `json:"location,omitempty"`
	Options          []location.Option  `json:"options,omitempty"`
	Message          string             `json:"message,omitempty"`
	ErrorCode        string             `json:"errorCode,omitempty"`
}
