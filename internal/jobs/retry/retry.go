// Package retry is the Retry Policy Engine (spec.md §4.3): a pure
// function from (attempts, max_attempts, error) to the next job
// state. It performs no I/O and reads no clock beyond what its caller
// passes in.
package retry

import (
	"math"
	"time"
)

type Outcome string

const (
	OutcomeRequeue    Outcome = "requeue"
	OutcomeDeadLetter Outcome = "dead_letter"
)

// Decision is the result of applying the policy to one failure.
type Decision struct {
	Outcome  Outcome
	RunAfter time.Time // meaningful only when Outcome == OutcomeRequeue
	Error    string
}

// Decide implements spec.md §4.3: if attempts < maxAttempts the job is
// requeued with exponential backoff (base 2, attempts already
// incremented at claim time: now + 2^attempts minutes); otherwise it
// dead-letters. now is injected so the function stays pure.
func Decide(attempts, maxAttempts int, errMsg string, now time.Time) Decision {
	if attempts < maxAttempts {
		backoff := time.Duration(math.Pow(2, float64(attempts))) * time.Minute
		return Decision{
			Outcome:  OutcomeRequeue,
			RunAfter: now.Add(backoff),
			Error:    errMsg,
		}
	}
	return Decision{Outcome: OutcomeDeadLetter, Error: errMsg}
}

// DecideUnknownType short-circuits straight to dead-letter regardless
// of attempts (spec.md §4.3 edge case: unknown job type).
func DecideUnknownType(errMsg string) Decision {
	return Decision{Outcome: OutcomeDeadLetter, Error: errMsg}
}
