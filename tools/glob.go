package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	agentscope "github.com/wuji1428/agentscope-go"
	"github.com/wuji1428/agentscope-go/internal/schema"
)

// maxGlobMatches caps the match list so the result stays a small, stable
// payload — glob results end up inside tool-result blocks that may be
// staged in a PendingStore and injected on resume.
const maxGlobMatches = 200

// GlobInput defines the input for the Glob tool.
type GlobInput struct {
	Pattern string `json:"pattern" jsonschema:"required,description=The glob pattern to match files against"`
	Path    string `json:"path,omitempty" jsonschema:"description=The directory to search in"`
}

// GlobTool matches files under a directory. Matches are returned relative
// to the search root, lexically sorted, and capped at maxGlobMatches with
// an omission note, so two runs over the same tree produce the same block.
type GlobTool struct{}

var _ agentscope.AgentTool = (*GlobTool)(nil)

func (t *GlobTool) Name() string        { return "Glob" }
func (t *GlobTool) Description() string { return "Fast file pattern matching tool" }

func (t *GlobTool) Parameters() map[string]any {
	return schema.Generate[GlobInput]()
}

func (t *GlobTool) Call(ctx context.Context, param *agentscope.ToolCallParam) (*agentscope.ToolResultBlock, error) {
	pattern, _ := param.Input["pattern"].(string)
	if pattern == "" {
		return agentscope.ErrorResultBlock("pattern is required"), nil
	}

	base, _ := param.Input["path"].(string)
	if base == "" {
		var err error
		base, err = os.Getwd()
		if err != nil {
			return agentscope.ErrorResultBlock(fmt.Sprintf("failed to get working directory: %s", err.Error())), nil
		}
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return agentscope.ErrorResultBlock(fmt.Sprintf("invalid path: %s", err.Error())), nil
	}

	matches, err := doublestar.Glob(os.DirFS(absBase), pattern)
	if err != nil {
		return agentscope.ErrorResultBlock(fmt.Sprintf("glob error: %s", err.Error())), nil
	}
	if len(matches) == 0 {
		return agentscope.TextResultBlock("No files matched the pattern."), nil
	}

	total := len(matches)
	sort.Strings(matches)
	omitted := 0
	if total > maxGlobMatches {
		omitted = total - maxGlobMatches
		matches = matches[:maxGlobMatches]
	}

	var b strings.Builder
	for _, m := range matches {
		b.WriteString(m)
		b.WriteByte('\n')
	}
	if omitted > 0 {
		fmt.Fprintf(&b, "... [%d more matches omitted]\n", omitted)
	}

	result := agentscope.TextResultBlock(b.String())
	result.Metadata = map[string]any{"total_matches": total}
	return result, nil
}
