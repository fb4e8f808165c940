// internal/workers/trip/search-cabs/models.go
package searchcabs

import (
	"cabs-workers/internal/booking"
	"cabs-workers/internal/location"
)

type Input struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	// Explicit place identifiers short-circuit discovery for the
	// corresponding end; this is how a disambiguation answer comes back.
	SourcePlaceID      string `json:"sourcePlaceId,omitempty"`
	DestinationPlaceID string `json:"destinationPlaceId,omitempty"`
	// PickupDate is dd-MM-yyyy or yyyy-MM-dd; PickupTime is HH:MM or h:MM AM/PM.
	PickupDate string `json:"pickupDate"`
	PickupTime string `json:"pickupTime"`
}

const (
	StatusResults              = "results"
	StatusDisambiguationNeeded = "disambiguation_needed"
)

type Output struct {
	SearchStatus string `json:"searchStatus"`

	// Disambiguation fields, set when one end needs a human choice.
	// When both ends are ambiguous the source is presented first.
	Role    string            `json:"role,omitempty"`
	Options []location.Option `json:"options,omitempty"`
	Message string            `json:"message,omitempty"`

	// Result fields.
	SearchID            string        `json:"searchId,omitempty"`
	SourceAddress       string        `json:"sourceAddress,omitempty"`
	DestinationAddress  string        `json:"destinationAddress,omitempty"`
	PickupTimeMs        int64         `json:"pickupTimeMs,omitempty"`
	TotalDistanceKm     float64       `json:"totalDistanceKm,omitempty"`
	TotalDurationMin    float64       `json:"totalDurationMin,omitempty"`
	CabAvailabilityTime string        `json:"cabAvailabilityTime,omitempty"`
	Cabs                []booking.Cab `json:"cabs,omitempty"`
}
