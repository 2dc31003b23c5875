package session

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/exam"
)

// CompileInput is everything needed to produce a result record.
type CompileInput struct {
	UserID      string
	SessionID   string
	Config      exam.TestConfiguration
	Questions   []exam.Question
	State       State
	Reason      exam.SubmitReason
	Integrity   exam.Integrity
	CompletedAt time.Time
}

// Compile builds the immutable result of a session. The score is
// correct/total*100 rounded to two decimals and time taken is the
// configured duration less the remaining seconds.
func Compile(in CompileInput) exam.ResultRecord {
	rec := exam.ResultRecord{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		SessionID:      in.SessionID,
		Config:         in.Config,
		CompletedAt:    in.CompletedAt,
		TotalQuestions: len(in.Questions),
		TimeRemaining:  max(in.State.RemainingSeconds, 0),
		Reason:         in.Reason,
		Integrity:      in.Integrity,
		Outcomes:       make([]exam.QuestionOutcome, 0, len(in.Questions)),
	}

	for i, q := range in.Questions {
		id := q.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		answer := in.State.Answers[i]
		o := exam.QuestionOutcome{
			QuestionID: id,
			Chapter:    q.Chapter,
			Difficulty: q.Difficulty,
			UserAnswer: answer,
			Correct:    q.IsCorrect(answer),
			Marked:     in.State.Marked[i],
		}
		switch {
		case !o.Attempted():
			rec.Unattempted++
		case o.Correct:
			rec.Attempted++
			rec.Correct++
		default:
			rec.Attempted++
			rec.Incorrect++
		}
		if o.Marked {
			rec.Marked++
		}
		rec.Outcomes = append(rec.Outcomes, o)
	}

	rec.Score = exam.Round2(exam.Percent(rec.Correct, rec.TotalQuestions))
	rec.TimeTaken = max(in.Config.DurationSeconds-rec.TimeRemaining, 0)
	return rec
}
