package daytona

import (
	"context"
	"mime/multipart"
	"strconv"

	"github.com/boxed-run/sdk/internal/boxederr"
	"github.com/boxed-run/sdk/internal/providerclient"
	"github.com/boxed-run/sdk/internal/sandbox"
)

type toolboxFile struct {
	Name  string `json:"name"`
	IsDir bool   `json:"isDir"`
	Size  int64  `json:"size"`
	Mode  string `json:"mode"`
}

// ReadFile, ListDir, Mkdir, and Rm go through Daytona's toolbox file API
// rather than the command-based helpers used by Modal/E2B, since the
// toolbox exposes them as first-class endpoints (spec.md §4.4.5).

func (a *Adapter) ReadFile(ctx context.Context, id, path string) ([]byte, error) {
	var out []byte
	err := a.client.Do(ctx, "GET", "/toolbox/"+id+"/files/download?path="+path, nil, &out,
		providerclient.RequestOptions{Capability: "fs", Operation: "ReadFile", SandboxID: id, Raw: true})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteFile uploads via multipart/form-data, Daytona's native file
// upload convention (spec.md §4.4.5: "Daytona uses multipart upload").
func (a *Adapter) WriteFile(ctx context.Context, id, path string, content []byte, mode int64) error {
	err := a.client.Do(ctx, "POST", "/toolbox/"+id+"/files/upload?path="+path, nil, nil,
		providerclient.RequestOptions{
			Capability: "fs", Operation: "WriteFile", SandboxID: id,
			Multipart: func(w *multipart.Writer) error {
				part, err := w.CreateFormFile("file", path)
				if err != nil {
					return err
				}
				_, err = part.Write(content)
				return err
			},
		})
	if err != nil {
		return err
	}
	if mode != 0 {
		_ = a.client.Do(ctx, "POST", "/toolbox/"+id+"/files/chmod", map[string]string{"path": path, "mode": strconv.FormatInt(mode, 8)}, nil,
			a.opCtx("fs", "WriteFile.chmod", id))
	}
	return nil
}

func (a *Adapter) ListDir(ctx context.Context, id, path string, recursive bool) ([]*sandbox.FsEntry, error) {
	var resp []toolboxFile
	q := "?path=" + path
	if recursive {
		q += "&recursive=true"
	}
	if err := a.client.Do(ctx, "GET", "/toolbox/"+id+"/files"+q, nil, &resp, a.opCtx("fs", "ListDir", id)); err != nil {
		return nil, err
	}
	entries := make([]*sandbox.FsEntry, 0, len(resp))
	for _, f := range resp {
		entryType := sandbox.EntryFile
		if f.IsDir {
			entryType = sandbox.EntryDir
		}
		entries = append(entries, &sandbox.FsEntry{Path: f.Name, Type: entryType, Size: f.Size})
	}
	return entries, nil
}

func (a *Adapter) Mkdir(ctx context.Context, id, path string) error {
	return a.client.Do(ctx, "POST", "/toolbox/"+id+"/files/folder?path="+path, nil, nil, a.opCtx("fs", "Mkdir", id))
}

func (a *Adapter) Rm(ctx context.Context, id, path string, recursive, force bool) error {
	err := a.client.Do(ctx, "DELETE", "/toolbox/"+id+"/files?path="+path, nil, nil, a.opCtx("fs", "Rm", id))
	if err != nil && force {
		if kind, ok := boxederr.KindOf(err); ok && kind == boxederr.KindNotFound {
			return nil
		}
	}
	return err
}
