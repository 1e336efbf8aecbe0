package tools

import agentscope "github.com/wuji1428/agentscope-go"

// Register adds all built-in tools to the toolkit. Shell is marked as
// requiring human confirmation.
func Register(tk *agentscope.Toolkit) {
	tk.Register(&GlobTool{})
	tk.Register(&ShellTool{})
	tk.RequireConfirmation("Shell")
}
