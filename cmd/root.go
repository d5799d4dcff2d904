package cmd

import "github.com/spf13/cobra"

// Version is set at build time.
var Version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "json-rpc-snoop",
	Short: "JSON-RPC snooping proxy",
	Long: `json-rpc-snoop proxies an HTTP JSON-RPC endpoint and dumps every
request and response to the terminal. Output can be filtered per method
or path, and requests or responses can be randomly dropped to simulate
network and endpoint failures.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("json-rpc-snoop v%s\n", Version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
