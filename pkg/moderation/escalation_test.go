package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationForWarnCount(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{-1, 0}, {0, 0},
		{1, 10}, {3, 10},
		{4, 30}, {6, 30},
		{7, 60}, {9, 60},
		{10, 360}, {14, 360},
		{15, 10080}, {40, 10080},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DurationForWarnCount(tt.count), "count %d", tt.count)
	}
}

func TestEscalationMonotonic(t *testing.T) {
	prev := DurationForWarnCount(0)
	for n := 1; n <= 50; n++ {
		d := DurationForWarnCount(n)
		assert.GreaterOrEqual(t, d, prev, "duration decreased at %d", n)
		prev = d

		kind, minutes := Escalate(n)
		assert.Equal(t, d, minutes)
		assert.Equal(t, n >= 15, kind == KindBan, "kind at %d", n)
	}
}
