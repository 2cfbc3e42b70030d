package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List this user's sandbox history across every provider",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiGet("/api/user/sandboxes")
		if err != nil {
			fmt.Printf("Error connecting to server: %v\nIs the server running?\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Printf("Server returned error: %s\n", resp.Status)
			os.Exit(1)
		}

		var result struct {
			Sandboxes []struct {
				SandboxID string    `json:"SandboxID"`
				Provider  string    `json:"Provider"`
				Status    string    `json:"Status"`
				CreatedAt time.Time `json:"CreatedAt"`
			} `json:"sandboxes"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			fmt.Printf("Error parsing response: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tPROVIDER\tSTATUS\tCREATED")
		for _, s := range result.Sandboxes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.SandboxID, s.Provider, s.Status, s.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
	},
}

func apiGet(path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, serverURL+path, nil)
	if err != nil {
		return nil, err
	}
	applyAuth(req)
	return http.DefaultClient.Do(req)
}

func init() {
	RootCmd.AddCommand(listCmd)
}
