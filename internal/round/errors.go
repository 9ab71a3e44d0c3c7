package round

import "errors"

var (
	// ErrEmptyPool means no eligible word matched the filter.
	ErrEmptyPool = errors.New("no eligible words")
	// ErrNoIgnorePending means ignore was requested without a pending wrong answer.
	ErrNoIgnorePending = errors.New("no wrong answer to ignore")
	// ErrNoWrongWords means a drill was requested with an empty wrong list.
	ErrNoWrongWords = errors.New("no wrong words to drill")
	// ErrNoActiveRound means the intent needs a current question.
	ErrNoActiveRound = errors.New("no active round")
	// ErrAwaitingDecision means an ignore/continue decision must be made first.
	ErrAwaitingDecision = errors.New("ignore or continue first")
	// ErrNotAwaiting means continue was requested without a pending decision.
	ErrNotAwaiting = errors.New("no pending decision")
)
