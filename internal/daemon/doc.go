// Package daemon turns the current process into a well-behaved background
// process and releases everything it acquired when the process winds down.
//
// Detachment is two-phase. Detach runs in the control invocation: it
// re-executes the binary in a new session with its standard streams on
// /dev/null, hands the log file over as an inherited descriptor, and waits until
// the child has recorded its own PID. Enter runs in that child: it applies the
// umask and working directory, takes an exclusive flock on the PID file, writes
// the PID, drops to an unprivileged group when running as root, and installs the
// signal routing table. Close undoes all of it and is safe to defer.
//
// Signal handling only flips state. SIGTERM cancels the context, which aborts
// whatever the payload is waiting on; SIGHUP and SIGUSR1 clear the continuation
// flag so the payload loop stops at its next iteration boundary.
package daemon
