package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ethDreamer/json-rpc-snoop/internal/chaos"
	"github.com/ethDreamer/json-rpc-snoop/internal/config"
	"github.com/ethDreamer/json-rpc-snoop/internal/filter"
	"github.com/ethDreamer/json-rpc-snoop/internal/proxy"
	"github.com/ethDreamer/json-rpc-snoop/internal/render"
	"github.com/ethDreamer/json-rpc-snoop/internal/stats"
)

var (
	configFile       string
	bindAddress      string
	port             int
	dropRequestRate  int
	dropResponseRate int
	dropDelay        time.Duration
	logHeaders       bool
	noColor          bool
	noStats          bool
	suppressMethods  []string
	suppressPaths    []string
	fixGethAttach    bool
	rpcModules       []string
)

const suppressHelp = `accepts TARGET[:MAXLINES][:SCOPE] where MAXLINES caps the printed
body (absent = print nothing) and SCOPE is REQUEST, RESPONSE or ALL`

var serveCmd = &cobra.Command{
	Use:   "serve [flags] RPC_ENDPOINT",
	Short: "Start the snooping proxy",
	Long: `Start the HTTP proxy that forwards every request to RPC_ENDPOINT and
dumps each request/response pair to the terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&configFile, "config", "", "Path to optional settings YAML file (flags win)")
	f.StringVarP(&bindAddress, "bind-address", "b", "127.0.0.1", "Address to bind to and listen for incoming requests")
	f.IntVarP(&port, "port", "p", 3000, "Port to listen for incoming requests")
	f.IntVar(&dropRequestRate, "drop-request-rate", 0, "Odds of randomly dropping a request for chaos testing [0..100]")
	f.IntVar(&dropResponseRate, "drop-response-rate", 0, "Odds of randomly dropping a response for chaos testing [0..100]")
	f.DurationVar(&dropDelay, "drop-delay", 0, "Delay before answering a chaos-dropped exchange")
	f.BoolVarP(&logHeaders, "log-headers", "l", false, "Print the headers in addition to request/response")
	f.BoolVarP(&noColor, "no-color", "n", false, "Do not use terminal colors in output")
	f.BoolVar(&noStats, "no-stats", false, "Disable the live stats endpoints under "+stats.Prefix)
	f.StringArrayVarP(&suppressMethods, "suppress-method", "s", nil,
		"Suppress output of JSON-RPC calls of this METHOD (repeatable); "+suppressHelp)
	f.StringArrayVarP(&suppressPaths, "suppress-path", "S", nil,
		"Suppress output of requests to this PATH (repeatable); "+suppressHelp)
	f.BoolVarP(&fixGethAttach, "fix-geth-attach", "f", false,
		"Answer the rpc_modules method locally, for endpoints that don't support it")
	f.StringArrayVarP(&rpcModules, "rpc-modules-override", "r", nil,
		"Module names to return from the rpc_modules method (implies --fix-geth-attach)")
}

// buildSettings merges defaults, the optional config file, and any
// explicitly set flags, in that order.
func buildSettings(cmd *cobra.Command, args []string) (config.Settings, error) {
	settings := config.Default()
	if configFile != "" {
		loaded, err := config.LoadFile(configFile)
		if err != nil {
			return config.Settings{}, err
		}
		settings = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("bind-address") {
		settings.BindAddress = bindAddress
	}
	if flags.Changed("port") {
		settings.Port = port
	}
	if flags.Changed("drop-request-rate") {
		settings.DropRequestRate = dropRequestRate
	}
	if flags.Changed("drop-response-rate") {
		settings.DropResponseRate = dropResponseRate
	}
	if flags.Changed("drop-delay") {
		settings.DropDelay = config.Duration(dropDelay)
	}
	if flags.Changed("log-headers") {
		settings.LogHeaders = logHeaders
	}
	if flags.Changed("no-color") {
		settings.NoColor = noColor
	}
	if flags.Changed("no-stats") {
		settings.NoStats = noStats
	}
	if flags.Changed("suppress-method") {
		settings.SuppressMethods = suppressMethods
	}
	if flags.Changed("suppress-path") {
		settings.SuppressPaths = suppressPaths
	}
	if flags.Changed("fix-geth-attach") {
		settings.FixGethAttach = fixGethAttach
	}
	if flags.Changed("rpc-modules-override") {
		settings.RPCModules = rpcModules
		settings.FixGethAttach = true
	}
	if len(args) == 1 {
		settings.Upstream = args[0]
	}

	return settings, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("component", "snoop").Logger()

	settings, err := buildSettings(cmd, args)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rules, err := settings.Rules()
	if err != nil {
		return err
	}
	engine := filter.NewEngine(rules)

	gate, err := chaos.NewGate(settings.DropRequestRate, settings.DropResponseRate, nil)
	if err != nil {
		return fmt.Errorf("invalid chaos configuration: %w", err)
	}

	renderer := render.New(os.Stdout, settings.NoColor, settings.LogHeaders)

	snoop, err := proxy.New(proxy.Options{
		Upstream:   settings.Upstream,
		Gate:       gate,
		Engine:     engine,
		Renderer:   renderer,
		Logger:     logger,
		DropDelay:  time.Duration(settings.DropDelay),
		RPCModules: settings.Modules(),
	})
	if err != nil {
		return fmt.Errorf("creating proxy: %w", err)
	}

	var handler http.Handler = snoop
	if !settings.NoStats {
		hub := stats.NewHub()
		snoop.AddObserver(hub.OnEvent)
		stats.Run(context.Background(), hub)

		statsHandler := stats.Handler(hub)
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, stats.Prefix) {
				statsHandler.ServeHTTP(w, r)
				return
			}
			snoop.ServeHTTP(w, r)
		})
	}

	logger.Info().
		Str("listen", settings.ListenAddr()).
		Str("upstream", settings.Upstream).
		Int("rules", len(rules)).
		Int("drop_request_rate", settings.DropRequestRate).
		Int("drop_response_rate", settings.DropResponseRate).
		Msg("starting json-rpc-snoop")

	return http.ListenAndServe(settings.ListenAddr(), handler)
}
