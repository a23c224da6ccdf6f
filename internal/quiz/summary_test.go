package quiz

import "testing"

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		answers []Answer
		want    float64
	}{
		{"no answers", nil, 0.0},
		{"full and partial", []Answer{{Score: ScoreFull}, {Score: ScorePartial}}, 75.0},
		{"all incorrect", []Answer{{Score: ScoreIncorrect}, {Score: ScoreIncorrect}}, 0.0},
		{"unknown tier counts as zero", []Answer{{Score: ScoreFull}, {Score: "Graded"}}, 50.0},
		{"single full", []Answer{{Score: ScoreFull}}, 100.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accuracy(tt.answers); got != tt.want {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	answers := []Answer{
		{QuestionID: "r1-q1", Score: ScoreFull},
		{QuestionID: "r1-q2", Score: ScorePartial},
	}
	sum := Summarize("rev-1", answers)
	if sum.RevisionID != "rev-1" {
		t.Errorf("revision id = %q", sum.RevisionID)
	}
	if len(sum.Questions) != 2 {
		t.Errorf("questions = %d", len(sum.Questions))
	}
	if sum.OverallAccuracy != 75.0 {
		t.Errorf("accuracy = %v, want 75", sum.OverallAccuracy)
	}
}
