// Package domain provides core business rules for the leads bounded context.
package domain

// Status is the funnel stage of a lead.
type Status string

const (
	StatusCold      Status = "cold"
	StatusQualified Status = "qualified"
	StatusWarm      Status = "warm"
	StatusHot       Status = "hot"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

// terminalStatuses are set by business events only; scoring never leaves them.
var terminalStatuses = map[Status]bool{
	StatusConverted: true,
	StatusLost:      true,
}

var knownStatuses = map[Status]bool{
	StatusCold:      true,
	StatusQualified: true,
	StatusWarm:      true,
	StatusHot:       true,
	StatusConverted: true,
	StatusLost:      true,
}

// Terminal reports whether the status can no longer be changed by rescoring.
func (s Status) Terminal() bool {
	return terminalStatuses[s]
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return knownStatuses[s]
}
