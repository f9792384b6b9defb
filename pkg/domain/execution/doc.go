// Package execution implements the execution plan engine: a dependency-gated,
// checkpointable state machine tracking a structured multi-phase development
// task (analyze, design, implement, validate, document, finalize) to
// completion.
//
// The engine does not run shell commands or agents. It records whether
// prerequisite conditions for advancing are met and exposes that progress to
// the stateless CLI process that is invoked repeatedly over the lifetime of a
// task. Plans are values: every transition returns a new plan, so holders of
// the previous value are never invalidated.
package execution
