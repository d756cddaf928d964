package pipeline

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/model"
)

// Classify maps a shortfall month index to a tier and message.
// Negative indices are treated as the current month.
func Classify(monthIndex *int) model.Verdict {
	if monthIndex == nil {
		return model.Verdict{
			Tier:    model.TierSafe,
			Message: fmt.Sprintf("No cash shortfall expected within the next %d months.", Horizon),
		}
	}

	idx := *monthIndex
	if idx < 0 {
		idx = 0
	}
	v := model.Verdict{MonthIndex: &idx}

	switch {
	case idx == 0:
		v.Tier = model.TierCritical
		v.Message = "Cash runs out this month. Immediate action required."
	case idx == 1:
		v.Tier = model.TierSevere
		v.Message = "Cash shortfall possible within 1 month. Secure funding now."
	case idx <= 3:
		v.Tier = model.TierWarning
		v.Message = fmt.Sprintf("Cash projected to run out within %d months. Review TP/LT.", idx)
	case idx < Horizon:
		v.Tier = model.TierAdvisory
		v.Message = fmt.Sprintf("Shortfall projected in %d months. Plan improvements early.", idx)
	default:
		// Beyond the horizon: no shortfall to report.
		v.MonthIndex = nil
		v.Tier = model.TierSafe
		v.Message = fmt.Sprintf("No cash shortfall expected within the next %d months.", Horizon)
	}
	return v
}
