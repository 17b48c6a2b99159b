package domain

// Chain is an ordered sequence of commands.
//
// The Chain built from the command line is a template and must not be
// mutated. Resolve derives the copy that is executed for one event.
type Chain struct {
	Commands []Command `json:"commands"`
	// Verbatim disables placeholder substitution.
	Verbatim bool `json:"verbatim,omitempty"`
	// Trigger is the path that caused a resolved chain to run.
	// It is empty on templates.
	Trigger string `json:"trigger,omitempty"`
}

// Resolve returns a deep copy of the chain with the placeholder replaced by
// path in every argument of every command. Verbatim chains are copied as is.
func (c Chain) Resolve(path string) Chain {
	out := Chain{
		Commands: make([]Command, len(c.Commands)),
		Verbatim: c.Verbatim,
		Trigger:  path,
	}
	for i, cmd := range c.Commands {
		if c.Verbatim {
			out.Commands[i] = cmd.clone()
			continue
		}
		out.Commands[i] = cmd.WithPath(path)
	}
	return out
}

// Tokens flattens the chain back into command line tokens. The trailing
// command carries no operator since it gates nothing.
func (c Chain) Tokens() []string {
	var tokens []string
	for i, cmd := range c.Commands {
		tokens = append(tokens, cmd.Name)
		tokens = append(tokens, cmd.Args...)
		if i < len(c.Commands)-1 {
			tokens = append(tokens, cmd.Gate.Operator())
		}
	}
	return tokens
}

// Len returns the number of commands in the chain.
func (c Chain) Len() int {
	return len(c.Commands)
}
