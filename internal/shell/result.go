package shell

import (
	"github.com/bornholm/breathe/internal/account"
)

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeFound
	OutcomeEmpty
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeFound:
		return "found"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchResult is the outcome of the mount-time user fetch.
type FetchResult struct {
	Outcome Outcome
	User    *account.User
	Err     error
}

func NewFetchResult(user *account.User, err error) FetchResult {
	switch {
	case err != nil:
		return FetchResult{Outcome: OutcomeFailed, Err: err}
	case user == nil:
		return FetchResult{Outcome: OutcomeEmpty}
	default:
		return FetchResult{Outcome: OutcomeFound, User: user}
	}
}

func (r FetchResult) Resolved() bool {
	return r.Outcome != OutcomePending
}
