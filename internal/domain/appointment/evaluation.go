package appointment

const (
	// MinPayoutRating is the lowest rating that still releases a payout.
	MinPayoutRating = 4
	// MinCallMinutes is the shortest total call time that still releases a
	// payout.
	MinCallMinutes = 10
)

// QualityAssessment is the batch verdict on a single evaluation. Either flag
// withholds the payout; both can fire at once.
type QualityAssessment struct {
	LowRating bool
	ShortCall bool
}

func Assess(ev Evaluation) QualityAssessment {
	return QualityAssessment{
		LowRating: ev.Rating < MinPayoutRating,
		ShortCall: ev.TotalCallDuration < MinCallMinutes,
	}
}

func (q QualityAssessment) Qualifies() bool {
	return !q.LowRating && !q.ShortCall
}
