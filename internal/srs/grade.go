package srs

import "fmt"

// Grade is the 0-5 rating of recall quality for one review event,
// compatible with the SuperMemo-2 scale.
type Grade int

const (
	// GradeBlackout: complete blackout, unable to recall.
	GradeBlackout Grade = 0
	// GradeIncorrect: incorrect response but remembered upon seeing the answer.
	GradeIncorrect Grade = 1
	// GradeIncorrectFamiliar: incorrect response but the answer felt familiar.
	GradeIncorrectFamiliar Grade = 2
	// GradeCorrectDifficult: correct response with significant effort.
	GradeCorrectDifficult Grade = 3
	// GradeCorrectHesitation: correct response after some hesitation.
	GradeCorrectHesitation Grade = 4
	// GradePerfect: perfect response with no hesitation.
	GradePerfect Grade = 5
)

// PassThreshold separates successful recalls from lapses: grades at or
// above it count as passing.
const PassThreshold = GradeCorrectDifficult

// IsValid reports whether g is within the 0-5 scale.
func (g Grade) IsValid() bool {
	return g >= GradeBlackout && g <= GradePerfect
}

// Passing reports whether g counts as a successful recall.
// Grades below the threshold are lapses.
func (g Grade) Passing() bool {
	return g >= PassThreshold
}

func (g Grade) String() string {
	return fmt.Sprintf("%d", int(g))
}
