// Package tools provides built-in agent tools.
//
// Register wires them into a Toolkit:
//
//	tk := agentscope.NewToolkit()
//	tools.Register(tk)
//
// Both tools are shaped for the coordinator's resume path: Glob returns a
// capped, stable match list and Shell keeps only the output tail in its
// result (streaming full output through the caller's Emitter), so their
// results stay small enough to stage in a PendingStore and inject on
// resume. Shell is registered confirm-gated: dispatching it suspends the
// agent until a human stages the command's result through the subagent
// coordinator.
package tools
