package model

// Tier is the severity of a projected cash shortfall.
type Tier int

const (
	TierSafe Tier = iota
	TierAdvisory
	TierWarning
	TierSevere
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierAdvisory:
		return "ADVISORY"
	case TierWarning:
		return "WARNING"
	case TierSevere:
		return "SEVERE"
	case TierCritical:
		return "CRITICAL"
	default:
		return "SAFE"
	}
}

// Label is the fixed display label for the tier.
func (t Tier) Label() string {
	switch t {
	case TierAdvisory:
		return "Shortfall ahead"
	case TierWarning:
		return "Cash running out"
	case TierSevere:
		return "Shortfall next month"
	case TierCritical:
		return "Shortfall this month"
	default:
		return "No shortfall"
	}
}

// Verdict is the classified outcome of a runway projection.
type Verdict struct {
	MonthIndex *int // nil: no shortfall within the horizon
	Tier       Tier
	Message    string
}

// HasShortfall reports whether a shortfall month was found in the horizon.
func (v Verdict) HasShortfall() bool {
	return v.Tier != TierSafe
}
