package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ethDreamer/json-rpc-snoop/internal/chaos"
	"github.com/ethDreamer/json-rpc-snoop/internal/config"
	"github.com/ethDreamer/json-rpc-snoop/internal/filter"
)

var (
	checkConfigFile      string
	checkSuppressMethods []string
	checkSuppressPaths   []string
	checkRequestRate     int
	checkResponseRate    int
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [PROBE...]",
	Short: "Validate a configuration and preview suppression behavior",
	Long: `Parse and validate suppression rules and chaos rates without starting
the proxy. Each PROBE is a method name, or a path when it starts with
'/'; for every probe the resolved directive is printed per phase.`,
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.StringVar(&checkConfigFile, "config", "", "Path to settings YAML file to validate")
	f.StringArrayVarP(&checkSuppressMethods, "suppress-method", "s", nil, "Suppression rule for a METHOD (repeatable)")
	f.StringArrayVarP(&checkSuppressPaths, "suppress-path", "S", nil, "Suppression rule for a PATH (repeatable)")
	f.IntVar(&checkRequestRate, "drop-request-rate", 0, "Request drop rate to validate [0..100]")
	f.IntVar(&checkResponseRate, "drop-response-rate", 0, "Response drop rate to validate [0..100]")
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings := config.Default()
	if checkConfigFile != "" {
		loaded, err := config.LoadFile(checkConfigFile)
		if err != nil {
			return err
		}
		settings = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("suppress-method") {
		settings.SuppressMethods = checkSuppressMethods
	}
	if flags.Changed("suppress-path") {
		settings.SuppressPaths = checkSuppressPaths
	}
	if flags.Changed("drop-request-rate") {
		settings.DropRequestRate = checkRequestRate
	}
	if flags.Changed("drop-response-rate") {
		settings.DropResponseRate = checkResponseRate
	}

	if _, err := chaos.NewGate(settings.DropRequestRate, settings.DropResponseRate, nil); err != nil {
		return err
	}

	rules, err := settings.Rules()
	if err != nil {
		return err
	}
	engine := filter.NewEngine(rules)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "configuration OK: %d rule(s)\n", len(rules))
	for _, r := range rules {
		fmt.Fprintf(out, "  %s\n", r)
	}

	for _, probe := range args {
		method, path := probe, "/"
		if strings.HasPrefix(probe, "/") {
			method, path = "", probe
		}
		reqDir := engine.Resolve(method, path, filter.PhaseRequest)
		respDir := engine.Resolve(method, path, filter.PhaseResponse)
		fmt.Fprintf(out, "%s: request=%s response=%s\n", probe, reqDir, respDir)
	}

	return nil
}
