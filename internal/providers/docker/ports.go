package docker

import (
	"context"
	"fmt"
	"net"

	"github.com/docker/go-connections/nat"
)

// buildPortBindings maps the caller's requested container ports to
// randomly chosen free host ports, matching E2B/Daytona's
// dynamically-assigned public ports (spec.md §4.4.3) since plain
// Docker has no native tunnel fabric. Ports bind to 127.0.0.1 (or
// config.DockerConfig.AdvertiseHost) rather than 0.0.0.0 so a Docker
// provider never unintentionally opens a port to the wider network.
func (a *Adapter) buildPortBindings(containerPorts []int) (nat.PortMap, nat.PortSet, map[int]int) {
	if len(containerPorts) == 0 {
		return nil, nil, nil
	}

	bindings := nat.PortMap{}
	exposed := nat.PortSet{}
	hostPorts := make(map[int]int, len(containerPorts))

	for _, p := range containerPorts {
		containerPort, err := nat.NewPort("tcp", fmt.Sprintf("%d", p))
		if err != nil {
			continue
		}
		hostPort := freePort()
		exposed[containerPort] = struct{}{}
		bindings[containerPort] = []nat.PortBinding{
			{HostIP: a.cfg.AdvertiseHost, HostPort: fmt.Sprintf("%d", hostPort)},
		}
		hostPorts[p] = hostPort
	}

	return bindings, exposed, hostPorts
}

// freePort asks the kernel for an unused TCP port by binding to :0 and
// immediately releasing it. Good enough for the brief window between
// this call and ContainerCreate's own bind.
func freePort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// GetProcessURLs synthesizes the host-reachable URL for each requested
// container port that has a cached host binding (spec.md §4.3.2
// ProcessStarter.GetProcessURLs). Ports with no binding are omitted
// rather than erroring the whole call out.
func (a *Adapter) GetProcessURLs(ctx context.Context, id string, ports []int) (map[int]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	mapping, ok := a.ports[id]
	if !ok {
		return map[int]string{}, nil
	}

	host := a.cfg.AdvertiseHost
	if host == "" {
		host = "127.0.0.1"
	}

	urls := make(map[int]string, len(ports))
	for _, containerPort := range ports {
		if hostPort, ok := mapping[containerPort]; ok {
			urls[containerPort] = fmt.Sprintf("http://%s:%d", host, hostPort)
		}
	}
	return urls, nil
}
