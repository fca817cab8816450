package domain

// GameOption is an admin-configured set of legal values for a game field.
// The legal game types and statuses live here rather than in a fixed enum,
// so admins can add a sport without a deploy. Callers consult the stored
// option on every validation, never a cached copy.
type GameOption struct {
	Timestamps
	// Name is the option this controls, e.g. "type" or "status".
	Name string `json:"name"`
	// Values are the legal values, in display order.
	Values []string `json:"values"`
}

// Allows reports whether the given value is currently legal.
func (o *GameOption) Allows(value string) bool {
	for _, v := range o.Values {
		if v == value {
			return true
		}
	}
	return false
}

// DefaultGameTypes seeds the "type" option on first boot.
var DefaultGameTypes = []string{"soccer", "basketball", "ultimate", "volleyball", "softball"}

// DefaultGameStatuses seeds the "status" option on first boot.
var DefaultGameStatuses = []string{string(GameProposed), string(GameOn)}
