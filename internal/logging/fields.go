package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a record for filtering (daemon_started, stale_pid_reaped, ...).
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldPID carries a process id.
	FieldPID = "pid"
	// FieldPIDFile carries the path of the PID file in play.
	FieldPIDFile = "pid_file"
	// FieldSignal names a delivered or received signal.
	FieldSignal = "signal"
	// FieldRunID identifies one detached daemon lifetime.
	FieldRunID = "run_id"
)
