package blaxel

import "context"

// resolveURL fetches the sandbox's own base URL once per id; the
// resulting URLResolver is wrapped by providerclient.SandboxClient,
// which caches the result until Destroy calls Forget (spec.md §4.4.9:
// "fetched once on first use and cached per sandbox id; invalidated on
// destroy").
func (a *Adapter) resolveURL(ctx context.Context, id string) (string, error) {
	var resp sandboxResponse
	if err := a.account.Do(ctx, "GET", "/sandboxes/"+id, nil, &resp, a.opCtx("lifecycle", "resolveURL", id)); err != nil {
		return "", err
	}
	return resp.URL, nil
}
