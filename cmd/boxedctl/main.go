// Package main is the entry point for boxedctl, the command-line client
// for talking to a running Boxed control plane (create/run/list/fs
// against its REST API, plus a local "serve" convenience command for
// development).
package main

import "github.com/boxed-run/sdk/internal/cli"

func main() {
	cli.Execute()
}
