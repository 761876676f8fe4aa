package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/wolfman30/fbgraph/internal/config"
	"github.com/wolfman30/fbgraph/internal/observability/metrics"
	"github.com/wolfman30/fbgraph/pkg/graph"
	"github.com/wolfman30/fbgraph/pkg/logging"
	"github.com/wolfman30/fbgraph/pkg/messenger"
)

// cli carries what every subcommand needs once flags and env are resolved.
type cli struct {
	out    io.Writer
	errOut io.Writer

	envFile         string
	logLevel        string
	versionOverride string

	// httpClient is nil outside tests.
	httpClient *http.Client

	cfg      *config.Config
	logger   *logging.Logger
	registry *prometheus.Registry
	metrics  *metrics.GraphMetrics
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}
	return c.rootCommand()
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "graphctl",
		Short:             "Drive the Graph and Send APIs from the command line",
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.setup() },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.dumpMetrics()
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.envFile, "env-file", "", "load credentials from this .env file (default: ./.env when present)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.StringVar(&c.versionOverride, "version-override", "", "API version segment for graph calls, e.g. v19.0")

	root.AddCommand(c.objectCommand())
	root.AddCommand(c.connectionsCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.appTokenCommand())
	root.AddCommand(c.analyticsCommand())
	root.AddCommand(c.testUsersCommand())
	root.AddCommand(c.sendTextCommand())
	root.AddCommand(c.messageTagsCommand())
	return root
}

func (c *cli) setup() error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	c.cfg = config.Load()
	level := c.cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	c.logger = logging.NewWithWriter(level, c.errOut)

	if c.cfg.MetricsEnabled {
		c.registry = prometheus.NewRegistry()
		c.metrics = metrics.NewGraphMetrics(c.registry)
	}
	return nil
}

func (c *cli) graphConfig(version string) graph.Config {
	cfg := graph.Config{
		BaseURL:    c.cfg.GraphBaseURL,
		Version:    version,
		Timeout:    c.cfg.HTTPTimeout,
		HTTPClient: c.httpClient,
		Logger:     c.logger,
		UserAgent:  c.cfg.UserAgent,
	}
	if c.metrics != nil {
		cfg.Metrics = c.metrics
	}
	return cfg
}

func (c *cli) graphVersion() string {
	if c.versionOverride != "" {
		return c.versionOverride
	}
	return c.cfg.GraphAPIVersion
}

func (c *cli) userAPI() (*graph.UserAPI, error) {
	if c.cfg.AccessToken == "" {
		return nil, errors.New("FB_ACCESS_TOKEN is not set")
	}
	var opts []graph.UserOption
	if c.cfg.AppSecretProof {
		if c.cfg.AppSecret == "" {
			return nil, errors.New("GRAPH_APPSECRET_PROOF needs FB_APP_SECRET")
		}
		opts = append(opts, graph.WithAppSecretProof(c.cfg.AppSecret))
	}
	return graph.NewUserAPI(c.cfg.AccessToken, c.graphConfig(c.graphVersion()), opts...), nil
}

func (c *cli) appAPI() (*graph.AppAPI, error) {
	if !c.cfg.HasAppCredentials() {
		return nil, errors.New("FB_APP_ID and FB_APP_SECRET must be set")
	}
	return graph.NewAppAPI(c.cfg.AppID, c.cfg.AppSecret, c.graphConfig(c.graphVersion()))
}

func (c *cli) sendAPI() (*messenger.SendAPI, error) {
	if c.cfg.PageAccessToken == "" {
		return nil, errors.New("FB_PAGE_ACCESS_TOKEN is not set")
	}
	version := c.cfg.MessengerVersion
	if c.versionOverride != "" {
		version = c.versionOverride
	}
	return messenger.NewSendAPI(c.cfg.PageAccessToken, c.graphConfig(version)), nil
}

// printJSON writes v as indented JSON. Raw JSON is re-indented as is.
func (c *cli) printJSON(v any) error {
	var raw []byte
	switch body := v.(type) {
	case *graph.Result:
		raw = body.Raw
	case json.RawMessage:
		raw = body
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		raw = data
	}
	if len(raw) == 0 {
		raw = []byte("null")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := c.out.Write(buf.Bytes())
	return err
}

func (c *cli) dumpMetrics() error {
	if c.registry == nil {
		return nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(c.errOut, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// parseParams turns repeated key=value flags into Params.
func parseParams(pairs []string) (graph.Params, error) {
	params := graph.Params{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q, want key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
