package exam

import (
	"math"
	"time"
)

// SubmitReason records what ended a session.
type SubmitReason string

const (
	ReasonUser      SubmitReason = "user"
	ReasonTimeout   SubmitReason = "timeout"
	ReasonIntegrity SubmitReason = "integrity"
)

// QuestionOutcome is the per-question line of a result.
// An empty UserAnswer means the question was left unattempted.
type QuestionOutcome struct {
	QuestionID string `json:"questionId"`
	Chapter    string `json:"chapter"`
	Difficulty string `json:"difficulty"`
	UserAnswer string `json:"userAnswer,omitempty"`
	Correct    bool   `json:"isCorrect"`
	Marked     bool   `json:"wasMarked"`
}

// Attempted reports whether an answer was chosen.
func (o QuestionOutcome) Attempted() bool { return o.UserAnswer != "" }

// Integrity is the proctoring metadata attached to a result.
type Integrity struct {
	Incidents       int  `json:"incidents"`
	CheatDetected   bool `json:"cheatDetected"`
	FullscreenExits int  `json:"fullscreenExits"`
}

// ResultRecord is produced exactly once per session and never mutated by
// the core afterwards.
type ResultRecord struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	SessionID      string            `json:"sessionId"`
	Config         TestConfiguration `json:"testConfig"`
	CompletedAt    time.Time         `json:"completedAt"`
	TotalQuestions int               `json:"totalQuestions"`
	Attempted      int               `json:"attempted"`
	Correct        int               `json:"correctAnswers"`
	Incorrect      int               `json:"incorrectAnswers"`
	Unattempted    int               `json:"unattempted"`
	Marked         int               `json:"markedForReview"`
	Score          float64           `json:"score"`
	TimeTaken      int               `json:"timeTaken"`
	TimeRemaining  int               `json:"timeRemaining"`
	Reason         SubmitReason      `json:"submitReason"`
	Outcomes       []QuestionOutcome `json:"questionResults"`
	Integrity      Integrity         `json:"integrity"`
}

// Round2 rounds a percentage to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Percent returns num/den*100, or 0 when den is 0. The result is not rounded.
func Percent(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}
