package moderation

// BanThreshold is the live warning count from which escalation bans instead of muting.
const BanThreshold = 15

// escalationSteps is the fixed staircase: the first step whose upper bound
// covers the count wins.
var escalationSteps = []struct {
	upTo    int
	minutes int
}{
	{3, 10},
	{6, 30},
	{9, 60},
	{14, 360},
}

// ceilingMinutes applies from BanThreshold onwards (one week).
const ceilingMinutes = 7 * MinutesPerDay

// DurationForWarnCount returns the punishment length in minutes for a member
// holding n live warnings. Counts of zero or less yield 0.
func DurationForWarnCount(n int) int {
	if n <= 0 {
		return 0
	}
	for _, step := range escalationSteps {
		if n <= step.upTo {
			return step.minutes
		}
	}
	return ceilingMinutes
}

// KindForWarnCount returns Ban once the count reaches BanThreshold, Mute otherwise.
func KindForWarnCount(n int) Kind {
	if n >= BanThreshold {
		return KindBan
	}
	return KindMute
}

// Escalate is the pair (kind, minutes) for n live warnings.
func Escalate(n int) (Kind, int) {
	return KindForWarnCount(n), DurationForWarnCount(n)
}
