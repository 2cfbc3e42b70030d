package modal

import (
	"context"
	"fmt"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// codeInterpreters maps each normalized language to the one-liner
// interpreter invocation the spec's Code module calls for: base64 the
// snippet, decode it through a language-appropriate runner.
var codeInterpreters = map[sandbox.Language][]string{
	sandbox.LangPython:     {"python3", "-u", "-c"},
	sandbox.LangJavaScript: {"node", "-e"},
	sandbox.LangTypeScript: {"npx", "tsx"},
	sandbox.LangBash:       {"sh", "-c"},
}

// RunCode executes in.Code via Run, reusing the same argv-encoding path
// every other command takes (spec.md §4.2 Code module).
func (a *Adapter) RunCode(ctx context.Context, id string, in sandbox.RunCodeInput) (*sandbox.RunResult, error) {
	lang, ok := sandbox.NormalizeLanguage(string(in.Language))
	if !ok {
		lang = in.Language
	}
	runner, ok := codeInterpreters[lang]
	if !ok {
		return nil, boxederr.Unsupported(boxederr.OpContext{Provider: Name, Capability: "code", Operation: "RunCode", SandboxID: id}, fmt.Sprintf("language %q", in.Language))
	}

	cmd := sandbox.RunCommand{
		Cmd:       runner[0],
		Args:      append(append([]string{}, runner[1:]...), in.Code),
		TimeoutMs: in.TimeoutMs,
	}
	return a.Run(ctx, id, cmd)
}
