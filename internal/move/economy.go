package move

import (
	"strconv"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
)

// SequenceLength is how many consecutive charged-move uses a sequence covers.
const SequenceLength = 3

// Sequence holds the fast-move uses needed for each of the first three
// charged-move uses, with leftover energy carried forward.
type Sequence [SequenceLength]int

// ceilDiv is exact integer ceiling division for positive operands.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func checkEnergy(fast *FastMove, charged *ChargedMove) error {
	if fast.EnergyGain <= 0 {
		return apperr.Domain("fast move %s has non-positive energy gain %d", fast.MoveID, fast.EnergyGain)
	}
	if charged.Energy <= 0 {
		return apperr.Domain("charged move %s has non-positive energy %d", charged.MoveID, charged.Energy)
	}
	return nil
}

// CumulativeMoveCount is the total fast-move uses needed before the charged
// move has been used n times.
func CumulativeMoveCount(fast *FastMove, charged *ChargedMove, n int) (int, error) {
	if err := checkEnergy(fast, charged); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, apperr.Domain("charged move use %d is negative", n)
	}
	return ceilDiv(charged.Energy*n, fast.EnergyGain), nil
}

// MoveCount is the fast-move uses needed for the n-th charged-move use alone,
// given that uses 1..n-1 already happened. n starts at 1.
func MoveCount(fast *FastMove, charged *ChargedMove, n int) (int, error) {
	if n < 1 {
		return 0, apperr.Domain("charged move use %d, want >= 1", n)
	}
	total, err := CumulativeMoveCount(fast, charged, n)
	if err != nil {
		return 0, err
	}
	before, err := CumulativeMoveCount(fast, charged, n-1)
	if err != nil {
		return 0, err
	}
	return total - before, nil
}

// MoveCountSequence returns the per-use counts for the first three charged-move uses.
func MoveCountSequence(fast *FastMove, charged *ChargedMove) (Sequence, error) {
	var seq Sequence
	for i := range seq {
		count, err := MoveCount(fast, charged, i+1)
		if err != nil {
			return Sequence{}, err
		}
		seq[i] = count
	}
	return seq, nil
}

// Label renders the count shown next to a charged move's name.
// A trailing "-" means later uses need fewer fast moves than the first.
// A trailing "." means only the third use gets cheaper.
func (s Sequence) Label() string {
	label := strconv.Itoa(s[0])
	if s[0] > s[1] {
		label += "-"
	}
	if s[2] < s[1] && s[0] == s[1] {
		label += "."
	}
	return label
}

// Cycle summarizes one fast-move run ending in a charged move.
type Cycle struct {
	MoveCounts        Sequence `json:"moveCountSequence"`
	TimeToFirstCharge int      `json:"timeToFirstCharge"`
	FastDamage        float64  `json:"fastDamage"`
	ChargedDamage     float64  `json:"chargedDamage"`
	TotalDamage       float64  `json:"totalDamage"`
	Duration          int      `json:"cycleDuration"`
	TotalDPT          float64  `json:"totalDPT"`
}

// NewCycle builds the cycle statistics for a move pair. fastDamage is the
// damage of a single fast-move use and chargedDamage that of the charged move,
// both with any attacker multipliers already applied.
func NewCycle(fast *FastMove, charged *ChargedMove, fastDamage, chargedDamage float64) (Cycle, error) {
	seq, err := MoveCountSequence(fast, charged)
	if err != nil {
		return Cycle{}, err
	}
	first := seq[0]
	// the charged move's own animation counts as one turn
	duration := first*fast.Turns() + 1
	total := float64(first)*fastDamage + chargedDamage

	return Cycle{
		MoveCounts:        seq,
		TimeToFirstCharge: first * fast.Turns(),
		FastDamage:        float64(first) * fastDamage,
		ChargedDamage:     chargedDamage,
		TotalDamage:       total,
		Duration:          duration,
		TotalDPT:          total / float64(duration),
	}, nil
}
