// Package subagent wraps an agent so it can be called as a tool by another
// agent, with multi-turn sessions and human-in-the-loop suspension.
//
// Tool exposes the wrapped agent under two parameters: message (required)
// and session_id (optional, to continue a prior conversation). Each call
// creates a fresh agent instance and reconstructs its state from a Session
// store, so conversations survive across calls.
//
// With HITL enabled, a sub-agent reply that stops for anything other than a
// natural model stop becomes a suspended tool result: it carries the pending
// inner tool-use blocks plus the session id and reason needed to resume.
// The caller stages the human-provided results in a Context, and
// InjectionHook rewrites the outer tool-use on the next acting pass so the
// Tool resumes the session with those results injected — the inner tools are
// never re-invoked.
//
//	ctx := subagent.NewContext()
//	tool, _ := subagent.New(provider, subagent.WithHITL(true))
//
//	parent, _ := agentscope.NewReActAgent(
//	    agentscope.WithToolkit(tk),             // tk has tool registered
//	    agentscope.WithSubAgentHITL(true),
//	    agentscope.WithHookMatchers(subagent.InjectionHook(ctx)),
//	)
//
//	// after a suspension with outer call id "toolu_1":
//	ctx.SetSessionID("toolu_1", sessionID)
//	ctx.SubmitResults("toolu_1", results)
//	reply, _ := parent.Call(context.Background(), nil) // resumes
package subagent
