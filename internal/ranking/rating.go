package ranking

// Result classes of a matchup rating, from the attacker's side.
const (
	ClassTie       = "tie"
	ClassLoss      = "loss"
	ClassCloseLoss = "close-loss"
	ClassCloseWin  = "close-win"
	ClassWin       = "win"
)

// RatingClass buckets a battle rating in [0, 1000] into a result class.
// 500 is an exact tie.
func RatingClass(rating int) string {
	switch {
	case rating == 500:
		return ClassTie
	case rating <= 250:
		return ClassLoss
	case rating < 500:
		return ClassCloseLoss
	case rating < 750:
		return ClassCloseWin
	default:
		return ClassWin
	}
}
