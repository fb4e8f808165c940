// Package location implements trip location resolution: free-text queries
// are matched against the place autocomplete provider, ambiguous matches go
// through a pluggable disambiguation strategy, and the winning place is
// expanded into a full location record via the detail API.
package location

import (
	"encoding/json"

	cerrors "cabs-workers/internal/common/errors"
)

// Role identifies which end of the trip a query is for.
type Role string

const (
	RoleSource      Role = "source"
	RoleDestination Role = "destination"
)

// Query is one resolution request.
type Query struct {
	// Text is the free-text location query.
	Text string
	// Role tags the query as source or destination; it is carried through
	// disambiguation and error messages unchanged.
	Role Role
	// Identifier, when set, is an already-known place identifier. Discovery
	// is skipped entirely and the identifier goes straight to detail lookup.
	Identifier string
}

// Candidate is one autocomplete prediction.
type Candidate struct {
	Identifier string `json:"place_id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
}

// Location is the resolved place record. Identifier and Address are the only
// fields the pipeline reads; everything else the detail API returns is kept
// opaque in Fields and round-tripped on marshal, so new upstream fields flow
// through without code changes.
type Location struct {
	Identifier string
	Address    string
	Fields     map[string]interface{}
}

// AsMap flattens the record into a JSON-ready map: the opaque Fields first,
// then place_id and address layered on top.
func (l Location) AsMap() map[string]interface{} {
	out := make(map[string]interface{}, len(l.Fields)+2)
	for k, v := range l.Fields {
		out[k] = v
	}
	if l.Identifier != "" {
		out["place_id"] = l.Identifier
	}
	if l.Address != "" {
		out["address"] = l.Address
	}
	return out
}

func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.AsMap())
}

func (l *Location) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["place_id"].(string); ok {
		l.Identifier = v
		delete(raw, "place_id")
	}
	if v, ok := raw["address"].(string); ok {
		l.Address = v
		delete(raw, "address")
	}
	l.Fields = raw
	return nil
}

// Option is one numbered disambiguation choice.
type Option struct {
	Number     int    `json:"option_number"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Identifier string `json:"place_id"`
}

// Disambiguation is presented when a query matches two or more places.
// Options are numbered 1..N in provider order.
type Disambiguation struct {
	Role    Role     `json:"role"`
	Query   string   `json:"query"`
	Options []Option `json:"options"`
	Message string   `json:"message"`
}

// Status is the terminal state of a resolution.
type Status string

const (
	StatusResolved             Status = "resolved"
	StatusNeedsDisambiguation  Status = "disambiguation_needed"
	StatusFailed               Status = "failed"
)

// Outcome is the result of Resolve. Exactly one of Location, Disambiguation
// or Err is set, matching Status.
type Outcome struct {
	Status         Status
	Location       *Location
	Disambiguation *Disambiguation
	Err            *cerrors.StandardError
}

func resolved(loc *Location) Outcome {
	return Outcome{Status: StatusResolved, Location: loc}
}

func needsDisambiguation(d *Disambiguation) Outcome {
	return Outcome{Status: StatusNeedsDisambiguation, Disambiguation: d}
}

func failed(err *cerrors.StandardError) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
