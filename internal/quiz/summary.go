package quiz

// scoreValue maps a tier to its accuracy contribution.
func scoreValue(score string) float64 {
	switch score {
	case ScoreFull:
		return 100.0
	case ScorePartial:
		return 50.0
	default:
		return 0.0
	}
}

// Accuracy averages tier values over the answered questions only.
// No answers means 0.
func Accuracy(answers []Answer) float64 {
	if len(answers) == 0 {
		return 0.0
	}
	var total float64
	for _, a := range answers {
		total += scoreValue(a.Score)
	}
	return total / float64(len(answers))
}

// Summarize aggregates every stored answer of a run.
func Summarize(revisionID string, answers []Answer) RevisionSummary {
	return RevisionSummary{
		RevisionID:      revisionID,
		Questions:       answers,
		OverallAccuracy: Accuracy(answers),
	}
}
