package compiler

import (
	"fmt"

	"github.com/aretw0/rewatch/pkg/domain"
)

// Parse splits a flat command line into a chain.
//
// Tokens that are exactly ";", "&&" or "||" close the command accumulated so
// far and tag it with the matching gate. The final command is closed with
// GateAlways. Closing an empty command (a leading, doubled or trailing
// operator, or no tokens at all) fails with domain.ErrEmptyCommand.
func Parse(tokens []string, verbatim bool) (domain.Chain, error) {
	chain := domain.Chain{Verbatim: verbatim}

	var buf []string
	for i, token := range tokens {
		gate, isOp := domain.GateForOperator(token)
		if !isOp {
			buf = append(buf, token)
			continue
		}
		cmd, err := domain.NewCommand(buf, gate)
		if err != nil {
			return domain.Chain{}, fmt.Errorf("before %q at position %d: %w", token, i, err)
		}
		chain.Commands = append(chain.Commands, cmd)
		buf = buf[:0]
	}

	// A trailing operator leaves nothing to run after it.
	if len(buf) == 0 {
		return domain.Chain{}, fmt.Errorf("at end of command line: %w", domain.ErrEmptyCommand)
	}
	cmd, err := domain.NewCommand(buf, domain.GateAlways)
	if err != nil {
		return domain.Chain{}, fmt.Errorf("at end of command line: %w", err)
	}
	chain.Commands = append(chain.Commands, cmd)

	return chain, nil
}
