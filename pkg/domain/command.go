package domain

import "strings"

// Command is a single executable invocation inside a chain.
type Command struct {
	Name string     `json:"name"`
	Args []string   `json:"args,omitempty"`
	Gate GatingRule `json:"gate"`
}

// NewCommand builds a Command from its tokens. The first token is the
// executable; an empty token list fails with ErrEmptyCommand.
func NewCommand(tokens []string, gate GatingRule) (Command, error) {
	if len(tokens) == 0 || tokens[0] == "" {
		return Command{}, ErrEmptyCommand
	}
	args := make([]string, len(tokens)-1)
	copy(args, tokens[1:])
	return Command{
		Name: tokens[0],
		Args: args,
		Gate: gate,
	}, nil
}

// WithPath returns a copy of the command with every placeholder in its
// arguments replaced by path. The executable name is left alone.
func (c Command) WithPath(path string) Command {
	out := Command{
		Name: c.Name,
		Args: make([]string, len(c.Args)),
		Gate: c.Gate,
	}
	for i, arg := range c.Args {
		out.Args[i] = strings.ReplaceAll(arg, Placeholder, path)
	}
	return out
}

func (c Command) clone() Command {
	out := c
	out.Args = make([]string, len(c.Args))
	copy(out.Args, c.Args)
	return out
}

// String renders the command for diagnostics. It is not shell-quoted.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}
