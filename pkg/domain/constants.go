package domain

// Placeholder is the argument token replaced by the triggering path.
const Placeholder = "{}"

// Chain operator tokens. They are only recognized as whole tokens.
const (
	OpSequence = ";"
	OpAnd      = "&&"
	OpOr       = "||"
)
