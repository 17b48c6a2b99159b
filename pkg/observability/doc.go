/*
Package observability provides the hooks that watch rebuilds as they run.

Metrics exports Prometheus collectors fed by executor lifecycle hooks and by
the watch loop. HistoryHooks records every finished chain into a
ports.HistoryStore.
*/
package observability
