package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingClass(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{0, ClassLoss},
		{250, ClassLoss},
		{251, ClassCloseLoss},
		{499, ClassCloseLoss},
		{500, ClassTie},
		{501, ClassCloseWin},
		{749, ClassCloseWin},
		{750, ClassWin},
		{1000, ClassWin},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatingClass(tt.rating), "rating %d", tt.rating)
	}
}
