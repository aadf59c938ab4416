package api

// ActionResult is what an action executor reports back to the dispatcher.
type ActionResult struct {
	// Success indicates whether the action ran to completion.
	Success bool

	// Result carries the action's result data, placed on the response
	// envelope's result field.
	Result Params

	// Err is the error text for failed actions (precondition violations,
	// invalid parameters). Empty on success.
	Err string
}

// Ok builds a successful ActionResult carrying result.
func Ok(result Params) ActionResult {
	return ActionResult{Success: true, Result: result}
}

// Fail builds a failed ActionResult with the given error text.
func Fail(errMsg string) ActionResult {
	return ActionResult{Err: errMsg}
}

// Action is a registered, state-validated operation. Actions do not change
// the state model; they validate the current state themselves and perform
// arbitrary (possibly slow) work while the dispatcher's worker is blocked.
//
// The dispatcher only enforces the envelope-level contract: timeouts,
// response shape, and the sync-buffering discipline. Whether an action is
// valid in the current state is entirely the executor's business.
type Action interface {
	// Name is the message name this action answers to. Must be unique
	// within an engine and must not collide with an event name.
	Name() string

	// Sync reports whether messages invoking this action should carry the
	// sync flag by default. Declared statically per action, not per call.
	Sync() bool

	// Execute runs the action against the current state. currentState is
	// the ::-joined state path at invocation time.
	Execute(currentState string, params Params) ActionResult
}
