package docker

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/sandbox"
)

// codeRunners maps each normalized language to the interpreter command
// that receives a base64-encoded snippet, wrapped in a decode-and-eval
// one-liner, as its inline-code argument, avoiding any quoting hazard
// from the snippet's own content. TypeScript bypasses this table; see
// RunCode.
var codeRunners = map[sandbox.Language][]string{
	sandbox.LangPython:     {"python3", "-c"},
	sandbox.LangJavaScript: {"node", "-e"},
	sandbox.LangTypeScript: {"npx", "-y", "tsx"},
	sandbox.LangBash:       {"sh", "-c"},
}

// RunCode decodes in.Code through a one-liner that base64-decodes and
// execs it in the target interpreter, reusing Process.Run's exec
// plumbing rather than a bespoke code-execution path (spec.md §4.3.5).
func (a *Adapter) RunCode(ctx context.Context, id string, in sandbox.RunCodeInput) (*sandbox.RunResult, error) {
	lang, ok := sandbox.NormalizeLanguage(string(in.Language))
	if !ok {
		lang = in.Language
	}

	runner, ok := codeRunners[lang]
	if !ok {
		return nil, boxederr.Unsupported(a.opCtx("code", "RunCode", id), fmt.Sprintf("language %q", in.Language))
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(in.Code))

	var script string
	switch lang {
	case sandbox.LangPython:
		script = fmt.Sprintf("import base64,sys;exec(base64.b64decode('%s'))", encoded)
	case sandbox.LangJavaScript:
		script = fmt.Sprintf("eval(Buffer.from('%s','base64').toString('utf8'))", encoded)
	case sandbox.LangTypeScript:
		script = in.Code // unused: TypeScript runs through `node --input-type=module -e` below
	case sandbox.LangBash:
		script = fmt.Sprintf("eval \"$(echo %s | base64 -d)\"", encoded)
	}

	cmd := sandbox.RunCommand{TimeoutMs: in.TimeoutMs}
	if lang == sandbox.LangTypeScript {
		cmd.Cmd = "node"
		cmd.Args = []string{"--input-type=module", "-e", fmt.Sprintf("eval(Buffer.from('%s','base64').toString('utf8'))", encoded)}
	} else {
		cmd.Cmd = runner[0]
		cmd.Args = append(append([]string{}, runner[1:]...), script)
	}

	return a.Run(ctx, id, cmd)
}
