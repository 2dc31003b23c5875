package take

import (
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/integrity"
	"github.com/abhisek/examprep/internal/session"
)

// tickMsg carries the countdown after each second.
type tickMsg struct {
	Remaining int
}

// warningMsg is sent for an integrity incident below the threshold.
type warningMsg struct {
	Incident integrity.Incident
}

// summaryMsg is sent when the session enters review, for any reason.
type summaryMsg struct {
	Summary session.Summary
}

// resultMsg is sent once the session is finalized, including automatic
// submissions after a timeout or an integrity violation.
type resultMsg struct {
	Record exam.ResultRecord
}

// finalizeFailedMsg reports a Finalize call that was rejected.
type finalizeFailedMsg struct {
	Err error
}
