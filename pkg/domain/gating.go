package domain

import "fmt"

// GatingRule governs whether a chain continues after a command has exited.
type GatingRule int

const (
	// GateAlways continues regardless of the exit status (";").
	GateAlways GatingRule = iota
	// GateOnSuccess continues only if the command succeeded ("&&").
	GateOnSuccess
	// GateOnFailure continues only if the command failed ("||").
	GateOnFailure
)

// GateForOperator maps an operator token to its rule.
// The boolean is false when the token is not an operator.
func GateForOperator(token string) (GatingRule, bool) {
	switch token {
	case OpSequence:
		return GateAlways, true
	case OpAnd:
		return GateOnSuccess, true
	case OpOr:
		return GateOnFailure, true
	}
	return GateAlways, false
}

// Proceed reports whether the chain should run the next command.
func (g GatingRule) Proceed(success bool) bool {
	switch g {
	case GateOnSuccess:
		return success
	case GateOnFailure:
		return !success
	default:
		return true
	}
}

// Operator returns the token that produces this rule.
func (g GatingRule) Operator() string {
	switch g {
	case GateOnSuccess:
		return OpAnd
	case GateOnFailure:
		return OpOr
	default:
		return OpSequence
	}
}

func (g GatingRule) String() string {
	switch g {
	case GateAlways:
		return "always"
	case GateOnSuccess:
		return "on_success"
	case GateOnFailure:
		return "on_failure"
	}
	return fmt.Sprintf("GatingRule(%d)", int(g))
}
