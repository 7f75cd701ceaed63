package service

import "math"

// roundHalfEven2 rounds to two decimals using banker's rounding, so repeated
// aggregation does not drift upward.
func roundHalfEven2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// weightedDocumentScore combines the supervisor score and the committee
// average using the document type's weight split. Weights are percentages.
func weightedDocumentScore(supervisorScore, supervisorWeight, committeeAvg, committeeWeight float64) float64 {
	return roundHalfEven2((supervisorScore*supervisorWeight + committeeAvg*committeeWeight) / 100)
}

// validScore reports whether the score is within 0-100 and carries at most
// two decimal places.
func validScore(score float64) bool {
	if score < 0 || score > 100 {
		return false
	}
	scaled := score * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}
