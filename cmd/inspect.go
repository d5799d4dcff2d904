package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ethDreamer/json-rpc-snoop/internal/filter"
	"github.com/ethDreamer/json-rpc-snoop/internal/render"
	"github.com/ethDreamer/json-rpc-snoop/internal/rpc"
)

var inspectNoColor bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Decode a single JSON-RPC payload and print it",
	Long: `Decode one JSON-RPC payload from the given file (or stdin when omitted)
and print its classification and pretty-printed body, exactly as the
proxy would log it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectNoColor, "no-color", "n", false, "Do not use terminal colors in output")
}

func runInspect(cmd *cobra.Command, args []string) error {
	var raw []byte
	var err error
	if len(args) == 1 && args[0] != "-" {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	env := rpc.Decode(raw)

	fmt.Fprintf(os.Stderr, "kind:   %s\n", env.Kind)
	if env.Method != "" {
		fmt.Fprintf(os.Stderr, "method: %s\n", env.Method)
	}
	if env.ID != "" {
		fmt.Fprintf(os.Stderr, "id:     %s\n", env.ID)
	}
	if env.Kind == rpc.KindResponse {
		fmt.Fprintf(os.Stderr, "error:  %v\n", env.HasError)
	}

	role := render.RoleRequest
	label := "REQUEST"
	if env.Kind == rpc.KindResponse {
		label = "RESPONSE"
		role = render.RoleResponse
		if env.HasError {
			role = render.RoleError
		}
	}

	renderer := render.New(cmd.OutOrStdout(), inspectNoColor, false)
	renderer.Render(render.Block{
		Label:     label,
		Role:      role,
		Body:      raw,
		Directive: filter.Full,
	})
	return nil
}
