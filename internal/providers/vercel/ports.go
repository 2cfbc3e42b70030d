package vercel

import "context"

type domainResponse struct {
	Port int    `json:"port"`
	URL  string `json:"domain"`
}

// GetProcessURLs asks Vercel for the public tunnel URL assigned to each
// requested port (spec.md §4.4.3: "Adapters with native tunnels (Modal,
// Vercel, Daytona) ask the provider for the public URL per port").
func (a *Adapter) GetProcessURLs(ctx context.Context, id string, ports []int) (map[int]string, error) {
	var resp []domainResponse
	if err := a.client.Do(ctx, "GET", "/v1/sandboxes/"+id+"/domains"+a.scopeQuery(), nil, &resp, a.opCtx("process", "GetProcessURLs", id)); err != nil {
		return nil, err
	}

	byPort := make(map[int]string, len(resp))
	for _, d := range resp {
		byPort[d.Port] = d.URL
	}

	out := make(map[int]string, len(ports))
	for _, p := range ports {
		if u, ok := byPort[p]; ok {
			out[p] = u
		}
	}
	return out, nil
}
