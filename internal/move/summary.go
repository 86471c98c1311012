package move

import "github.com/SlpAus/pvp-rankings-backend/internal/apperr"

// CheckMoveset reports whether ids form one fast move followed by one or two
// charged moves.
func CheckMoveset(moveset []string) error {
	if len(moveset) < 2 || len(moveset) > 3 {
		return apperr.Domain("moveset has %d moves, want 2 or 3", len(moveset))
	}
	return nil
}

// SummaryFast is the fast-move part of a moveset summary line.
type SummaryFast struct {
	MoveID string `json:"moveId"`
	Name   string `json:"name"`
	Turns  int    `json:"turns"`
}

// SummaryCharged is one charged-move part, with its count label.
type SummaryCharged struct {
	MoveID string `json:"moveId"`
	Name   string `json:"name"`
	Count  string `json:"count"`
}

// Summary is the one-line moveset shown in ranking listings.
type Summary struct {
	Fast    SummaryFast      `json:"fast"`
	Charged []SummaryCharged `json:"charged"`
}

// Summarize resolves a moveset into its summary line.
func (c *Catalog) Summarize(moveset []string) (Summary, error) {
	if err := CheckMoveset(moveset); err != nil {
		return Summary{}, err
	}
	fast, err := c.Fast(moveset[0])
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		Fast:    SummaryFast{MoveID: fast.MoveID, Name: fast.Name, Turns: fast.Turns()},
		Charged: make([]SummaryCharged, 0, len(moveset)-1),
	}
	for _, id := range moveset[1:] {
		charged, err := c.Charged(id)
		if err != nil {
			return Summary{}, err
		}
		label, err := c.CountLabel(fast.MoveID, charged.MoveID)
		if err != nil {
			return Summary{}, err
		}
		out.Charged = append(out.Charged, SummaryCharged{MoveID: charged.MoveID, Name: charged.Name, Count: label})
	}
	return out, nil
}
