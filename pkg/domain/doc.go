/*
Package domain contains the core model of rewatch.

It defines the values that flow between the parser, the dispatcher and the
executor. This package is kept pure and free of external dependencies like
process spawning or filesystem watching.

# Key Entities

  - GatingRule: Decides whether a chain proceeds after a command exits.
  - Command: One executable with its arguments and the gate that follows it.
  - Chain: The ordered commands parsed from the command line. A Chain parsed at
    startup is a template; Resolve derives the per-event copy that gets executed.
  - Event: A change notification delivered by an event source.
  - RunRecord: What happened during one chain execution, reported through hooks.
*/
package domain
