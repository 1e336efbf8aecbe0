// Package agentscope provides a reactive agent runtime with tool calling,
// session persistence, and human-in-the-loop suspension.
//
// The central type is [ReActAgent], a reasoning/acting loop that drives a
// [ChatModel] and dispatches tool calls through a [Toolkit]. Agents can be
// wrapped as tools of other agents via the subagent package, which adds a
// suspend/resume protocol: a nested tool call that needs human confirmation
// pauses the whole chain, surfaces the pending work to the outer caller, and
// later resumes with injected results while session state is preserved.
//
// # Quick Start
//
//	tk := agentscope.NewToolkit()
//	agentscope.RegisterFunc(tk, "get_time", "Get the current time",
//	    func(ctx context.Context, in struct{}) (*agentscope.ToolResultBlock, error) {
//	        return agentscope.TextResultBlock(time.Now().String()), nil
//	    })
//
//	a, _ := agentscope.NewReActAgent(
//	    agentscope.WithName("Assistant"),
//	    agentscope.WithChatModel(model.NewAnthropic()),
//	    agentscope.WithToolkit(tk),
//	)
//	reply, _ := a.Call(ctx, []*agentscope.Msg{agentscope.UserMsg("Hello")})
//
// # Sub-packages
//
//   - subagent wraps an agent as a tool with HITL suspension/resumption.
//   - model provides ChatModel implementations (Anthropic).
//   - session provides Session store backends (MemoryStore, FileStore).
//   - tools provides built-in tools (Glob, Shell).
package agentscope
