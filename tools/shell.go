package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"

	agentscope "github.com/wuji1428/agentscope-go"
	"github.com/wuji1428/agentscope-go/internal/schema"
)

const (
	defaultShellTimeout = 2 * time.Minute
	maxShellTimeout     = 10 * time.Minute

	// tailLimit bounds the final tool result. The full output travels
	// out-of-band through the emitter; only the tail is worth carrying in
	// a result that may be staged and injected on resume.
	tailLimit    = 50
	maxLineBytes = 16 * 1024
)

// ShellInput defines the input for the Shell tool.
type ShellInput struct {
	Command        string   `json:"command" jsonschema:"required,description=The command to execute"`
	TimeoutSeconds *float64 `json:"timeout_seconds,omitempty" jsonschema:"description=Timeout in seconds (max 600)"`
}

// ShellTool runs a command in a PTY. Output is forwarded line by line
// through the caller's emitter as tool-result chunks — the same channel
// sub-agent events travel on — while the final result carries only the exit
// code and the output tail, keeping the payload small enough to stage in a
// PendingStore and inject on resume.
type ShellTool struct{}

var _ agentscope.AgentTool = (*ShellTool)(nil)

func (t *ShellTool) Name() string        { return "Shell" }
func (t *ShellTool) Description() string { return "Execute a shell command" }

func (t *ShellTool) Parameters() map[string]any {
	return schema.Generate[ShellInput]()
}

func (t *ShellTool) Call(ctx context.Context, param *agentscope.ToolCallParam) (*agentscope.ToolResultBlock, error) {
	command, _ := param.Input["command"].(string)
	if command == "" {
		return agentscope.ErrorResultBlock("command is required"), nil
	}

	timeout := defaultShellTimeout
	if secs, ok := param.Input["timeout_seconds"].(float64); ok && secs > 0 {
		timeout = time.Duration(secs * float64(time.Second))
		if timeout > maxShellTimeout {
			timeout = maxShellTimeout
		}
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tail := newTailBuffer(tailLimit)
	exitCode, err := runPTY(cmdCtx, command, param.Emitter, tail)
	if err != nil {
		// No PTY in this environment; run against a plain pipe instead.
		exitCode, err = runPlain(cmdCtx, command, param.Emitter, tail)
	}

	if cmdCtx.Err() == context.DeadlineExceeded {
		return agentscope.ErrorResultBlock(fmt.Sprintf("command timed out after %s", timeout)), nil
	}
	if err != nil {
		return agentscope.ErrorResultBlock(fmt.Sprintf("command failed to start: %s", err)), nil
	}

	result := agentscope.TextResultBlock(tail.String())
	result.Metadata = map[string]any{
		"exit_code":   exitCode,
		"total_lines": tail.Seen(),
	}
	if exitCode != 0 {
		result.IsError = true
	}
	return result, nil
}

// runPTY starts the command under a pseudo-terminal and drains it line by
// line, feeding the tail buffer and the emitter as output arrives.
func runPTY(ctx context.Context, command string, emitter agentscope.Emitter, tail *tailBuffer) (int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return 0, err
	}
	defer ptmx.Close()

	scanner := bufio.NewScanner(ptmx)
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		tail.Add(line)
		forwardLine(emitter, line)
	}
	// The scanner ends with EIO when the process closes the PTY; that is
	// the normal end of output, so only the wait result matters.
	return exitCodeOf(cmd.Wait()), nil
}

// runPlain is the no-PTY path: run to completion, then replay the combined
// output through the same tail/emitter plumbing.
func runPlain(ctx context.Context, command string, emitter agentscope.Emitter, tail *tailBuffer) (int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	output, runErr := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) && ctx.Err() == nil {
		return 0, runErr
	}

	if len(output) > 0 {
		for _, line := range strings.Split(strings.TrimRight(string(output), "\n"), "\n") {
			tail.Add(line)
			forwardLine(emitter, line)
		}
	}
	return exitCodeOf(runErr), nil
}

// forwardLine streams one output line to the caller as a tool-result chunk.
func forwardLine(emitter agentscope.Emitter, line string) {
	if emitter == nil {
		return
	}
	emitter.Emit(&agentscope.ToolResultBlock{
		Output:   []agentscope.ContentBlock{&agentscope.TextBlock{Text: line}},
		Metadata: map[string]any{"shell_stream": true},
	})
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// tailBuffer keeps the most recent lines of output and counts what it drops.
type tailBuffer struct {
	limit   int
	lines   []string
	dropped int
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Add(line string) {
	if len(b.lines) == b.limit {
		b.lines = b.lines[1:]
		b.dropped++
	}
	b.lines = append(b.lines, line)
}

// Seen returns the total number of lines observed, including dropped ones.
func (b *tailBuffer) Seen() int {
	return b.dropped + len(b.lines)
}

func (b *tailBuffer) String() string {
	joined := strings.Join(b.lines, "\n")
	if b.dropped > 0 {
		return fmt.Sprintf("... [%d earlier lines omitted]\n%s", b.dropped, joined)
	}
	return joined
}
