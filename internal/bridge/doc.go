// Package bridge holds the shared state between callers and the running
// language server.
//
// A Bridge owns at most one server process at a time. Spawn replaces the
// current process (the old one has its input closed and is killed) and Send
// forwards a message body to the current process, failing with
// NotRunningError when there is none. When a process exits on its own the
// bridge forgets it, so later sends fail fast instead of hitting a broken
// pipe.
package bridge
