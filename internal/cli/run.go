package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var (
	image    string
	language string
)

var runCmd = &cobra.Command{
	Use:   "run [code]",
	Short: "Run code in an ephemeral sandbox on the configured provider",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		code := args[0]
		targetProvider := provider
		if targetProvider == "" {
			targetProvider = "docker"
		}

		createPayload := map[string]any{"provider": targetProvider, "image": image}
		body, _ := json.Marshal(createPayload)

		resp, err := apiPost("/api/sandbox/create", body)
		if err != nil {
			fmt.Printf("Failed to connect: %v\nIs the server running?\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			fmt.Printf("Create failed: %s\n", resp.Status)
			io.Copy(os.Stderr, resp.Body)
			os.Exit(1)
		}

		var createResp struct {
			SandboxID string `json:"sandboxId"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&createResp); err != nil {
			fmt.Printf("Bad response: %v\n", err)
			os.Exit(1)
		}
		id := createResp.SandboxID
		fmt.Printf("sandbox %s created on %s\n", id, targetProvider)
		defer cleanup(id, targetProvider)

		execPayload := map[string]string{"provider": targetProvider, "code": code, "language": language}
		body, _ = json.Marshal(execPayload)
		resp, err = apiPost(fmt.Sprintf("/api/sandbox/%s/exec", id), body)
		if err != nil {
			fmt.Printf("exec failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		var execResp struct {
			Stdout   string `json:"stdout"`
			Stderr   string `json:"stderr"`
			ExitCode int    `json:"exitCode"`
		}
		json.NewDecoder(resp.Body).Decode(&execResp)

		fmt.Print(execResp.Stdout)
		if execResp.Stderr != "" {
			fmt.Fprint(os.Stderr, execResp.Stderr)
		}
		if execResp.ExitCode != 0 {
			os.Exit(execResp.ExitCode)
		}
	},
}

func cleanup(id, targetProvider string) {
	req, _ := http.NewRequest(http.MethodPost, serverURL+fmt.Sprintf("/api/sandbox/%s/destroy?provider=%s", id, targetProvider), nil)
	applyAuth(req)
	http.DefaultClient.Do(req)
}

// apiPost issues an authenticated POST against the configured server.
func apiPost(path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, serverURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	applyAuth(req)
	return http.DefaultClient.Do(req)
}

func applyAuth(req *http.Request) {
	if apiKey != "" {
		req.Header.Set("X-Boxed-API-Key", apiKey)
	}
}

func init() {
	runCmd.Flags().StringVarP(&image, "image", "i", "", "Sandbox image (defaults to the provider's own default)")
	runCmd.Flags().StringVarP(&language, "language", "l", "python", "Language to run the code as (python, javascript, typescript, bash)")
	RootCmd.AddCommand(runCmd)
}
