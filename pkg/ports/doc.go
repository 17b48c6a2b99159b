/*
Package ports defines the driven ports (interfaces) of rewatch.

These interfaces decouple the watch loop from concrete implementations, so the
loop can be driven by fsnotify in production and by an in-memory source in
tests, and run history can live in memory or in Redis.

# Key Interfaces

  - EventSource: Delivers change events for the watched path.
  - ChainExecutor: Runs one resolved chain to completion.
  - ChainDispatcher: Decides whether a chain runs inline or in the background.
  - HistoryStore: Persists records of executed chains.
*/
package ports
