package measure

import (
	"math"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

// StereoInfo reports image measurements for a two-channel buffer.
type StereoInfo struct {
	Correlation float64
	LeftRmsDb   float64
	RightRmsDb  float64
	ImbalanceDb float64
}

// Stereo computes Pearson correlation between channels and the left/right
// level imbalance. Non-stereo buffers report full correlation and no
// imbalance.
func Stereo(buf *types.AudioBuffer) StereoInfo {
	if buf.Channels() != 2 || buf.Frames() == 0 {
		return StereoInfo{Correlation: 1, LeftRmsDb: -120, RightRmsDb: -120}
	}

	left := buf.Samples[0]
	right := buf.Samples[1]

	var sumL, sumR, sumLL, sumRR, sumLR float64

	for i := range left {
		sumL += left[i]
		sumR += right[i]
		sumLL += left[i] * left[i]
		sumRR += right[i] * right[i]
		sumLR += left[i] * right[i]
	}

	n := float64(len(left))

	numerator := n*sumLR - sumL*sumR
	denominator := math.Sqrt((n*sumLL - sumL*sumL) * (n*sumRR - sumR*sumR))

	var correlation float64
	if denominator > 0 {
		correlation = numerator / denominator
	}

	leftDb := rmsDbFloor(math.Sqrt(sumLL / n))
	rightDb := rmsDbFloor(math.Sqrt(sumRR / n))

	return StereoInfo{
		Correlation: correlation,
		LeftRmsDb:   leftDb,
		RightRmsDb:  rightDb,
		ImbalanceDb: leftDb - rightDb,
	}
}

func rmsDbFloor(rms float64) float64 {
	if rms <= 0 {
		return -120
	}

	db := 20 * math.Log10(rms)
	if math.IsInf(db, -1) || db < -120 {
		return -120
	}

	return db
}
