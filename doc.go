/*
Package rewatch re-runs a shell-free command chain every time a file changes.

A chain is a sequence of commands joined by ";" (always continue), "&&"
(continue on success) and "||" (continue on failure). Every literal "{}" in
a command's arguments is replaced with the path of the file that triggered
the run, unless verbatim mode is enabled.

# Usage

	w, err := rewatch.New("main.go", []string{"go", "vet", "{}", "&&", "go", "test", "./..."},
		rewatch.WithAsync(true),
		rewatch.WithRunOnStart(true),
	)
	if err != nil {
		log.Fatal(err)
	}
	reason, err := w.Run(ctx)

Run returns when the watched file is removed or ctx is cancelled. In async
mode it first waits for every chain already started, oldest first.

# Modes

In sync mode the watch loop blocks while a chain runs, so changes made
meanwhile are coalesced by the filesystem source. In async mode each change
starts a chain immediately; chains may overlap and are never cancelled.
*/
package rewatch
