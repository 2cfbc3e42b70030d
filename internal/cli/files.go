package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "fs",
	Short: "Inspect files in a sandbox",
}

var lsCmd = &cobra.Command{
	Use:   "ls [sandbox-id] [path]",
	Short: "List files in directory",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		path := "/"

		if parts := splitRemote(id); parts != nil {
			id = parts[0]
			path = parts[1]
		} else if len(args) > 1 {
			path = args[1]
		}

		resp, err := apiGet(fmt.Sprintf("/api/sandbox/%s/ls?path=%s&provider=%s", id, url.QueryEscape(path), url.QueryEscape(provider)))
		if err != nil {
			fmt.Printf("Failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Printf("Error: %s\n", resp.Status)
			io.Copy(os.Stderr, resp.Body)
			os.Exit(1)
		}

		var result struct {
			Entries []struct {
				Path       string    `json:"path"`
				Type       string    `json:"type"`
				Size       int64     `json:"size"`
				ModifiedAt time.Time `json:"modifiedAt"`
			} `json:"entries"`
		}
		json.NewDecoder(resp.Body).Decode(&result)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TYPE\tSIZE\tUPDATED\tPATH")
		for _, f := range result.Entries {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", f.Type, f.Size, f.ModifiedAt.Format(time.RFC822), f.Path)
		}
		w.Flush()
	},
}

var getCmd = &cobra.Command{
	Use:   "cat [sandbox-id] [path]",
	Short: "Print file content",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		path := ""

		if parts := splitRemote(id); parts != nil {
			id = parts[0]
			path = parts[1]
		} else if len(args) > 1 {
			path = args[1]
		}

		if path == "" {
			fmt.Println("Path is required. Use ID:path or pass path as second argument")
			os.Exit(1)
		}

		resp, err := apiGet(fmt.Sprintf("/api/sandbox/%s/read?path=%s&provider=%s", id, url.QueryEscape(path), url.QueryEscape(provider)))
		if err != nil {
			fmt.Printf("Failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Printf("Error: %s\n", resp.Status)
			io.Copy(os.Stderr, resp.Body)
			os.Exit(1)
		}

		io.Copy(os.Stdout, resp.Body)
	},
}

func init() {
	filesCmd.AddCommand(lsCmd)
	filesCmd.AddCommand(getCmd)
	RootCmd.AddCommand(filesCmd)
}

// splitRemote supports the "sandboxID:/path" shorthand on top of a plain
// positional path argument.
func splitRemote(s string) []string {
	for i, c := range s {
		if c == ':' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
