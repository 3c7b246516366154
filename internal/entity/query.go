package entity

import (
	"github.com/hippocampus-app/hippocampus/constants"
)

// QueryCandidate is a provisional aggregation request. Start is inclusive,
// End exclusive. A nil Category means no category filter. Built once per
// utterance, consumed exactly once, never persisted.
type QueryCandidate struct {
	Start      string              `json:"start"` // YYYY-MM-DD
	End        string              `json:"end"`   // YYYY-MM-DD
	Category   *constants.Category `json:"category,omitempty"`
	Scope      constants.Scope     `json:"scope"`
	MemberName string              `json:"member_name"`
}
