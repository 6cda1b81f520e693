package task

import (
	"strings"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
)

// Quadrant is one of the four cells of the importance/urgency matrix.
type Quadrant string

// Quadrant values.
const (
	Q1 Quadrant = "Q1" // important, urgent
	Q2 Quadrant = "Q2" // important, not urgent
	Q3 Quadrant = "Q3" // not important, urgent
	Q4 Quadrant = "Q4" // neither
)

// Quadrants lists every quadrant in display order.
var Quadrants = []Quadrant{Q1, Q2, Q3, Q4}

var quadrantLabels = map[Quadrant]string{
	Q1: "Do first",
	Q2: "Schedule",
	Q3: "Delegate",
	Q4: "Eliminate",
}

// Classify maps the two flags onto a quadrant.
func Classify(isImportant, isUrgent bool) Quadrant {
	switch {
	case isImportant && isUrgent:
		return Q1
	case isImportant:
		return Q2
	case isUrgent:
		return Q3
	default:
		return Q4
	}
}

// Label returns the short action name for the quadrant.
func (q Quadrant) Label() string {
	return quadrantLabels[q]
}

// Valid reports whether q is one of Q1..Q4.
func (q Quadrant) Valid() bool {
	_, ok := quadrantLabels[q]
	return ok
}

// ParseQuadrant accepts Q1..Q4 in any case.
func ParseQuadrant(s string) (Quadrant, error) {
	q := Quadrant(strings.ToUpper(strings.TrimSpace(s)))
	if !q.Valid() {
		return "", clierr.Newf(clierr.InvalidQuadrant, "invalid quadrant %q", s).
			WithDetails(map[string]any{
				"quadrant": s,
				"allowed":  Quadrants,
			})
	}
	return q, nil
}

// ParseQuadrants parses a comma-separated quadrant list.
func ParseQuadrants(s string) ([]Quadrant, error) {
	var out []Quadrant
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		q, err := ParseQuadrant(part)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
