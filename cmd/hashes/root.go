package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rafabd1/hashes/internal/algorithm"
	"github.com/rafabd1/hashes/internal/config"
	"github.com/rafabd1/hashes/internal/core"
	"github.com/rafabd1/hashes/internal/report"
	"github.com/rafabd1/hashes/internal/utils"
)

const envPrefix = "HASHES"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hashes [flags] <POST url>",
		Short: "Generate colliding hash keys and flood a form endpoint with them",
		Long: `hashes builds sets of distinct keys that share one hash code under the
string hash of a web platform (DJBX33A for PHP, DJBX31A for Java, DJBX33X for
ASP.NET, V8 for Node.js) and posts them as form parameters to a target.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInjection,
	}

	defaults := config.GetDefaultConfig()
	f := cmd.Flags()
	f.String("config", "", "Config file (yaml, json, toml, ...)")
	f.StringP("algorithm", "a", defaults.Algorithm, "Hash algorithm: "+strings.Join(algorithm.Names(), ", "))
	f.BoolP("new", "n", defaults.GenerateNewKeys, "Generate new keys instead of using the pre-built ones")
	f.StringP("seed", "s", defaults.Seed, "Seed phrase the MITM search collides with")
	f.Int("mitm-workers", defaults.MITMWorkers, "MITM search workers (0 = one per CPU)")
	f.IntP("keys", "k", defaults.NumberOfKeys, "Number of keys per request")
	f.String("keys-file", defaults.KeysFile, "Load keys saved by a previous run")
	f.String("save-keys", defaults.SaveKeysFile, "Save the keys to this file")
	f.String("save-format", defaults.SaveKeysFormat, "Format of --save-keys: text or json")
	f.BoolP("progress", "p", defaults.ProgressBar, "Show a progress bar while generating keys")
	f.BoolP("wait", "w", defaults.WaitResponse, "Wait for and read each response body")
	f.IntP("requests", "r", defaults.RequestsPerClient, "Requests per client")
	f.IntP("clients", "c", defaults.NumberOfClients, "Number of concurrent clients")
	f.Duration("connect-timeout", defaults.ConnectTimeout, "Connection timeout")
	f.Duration("read-timeout", defaults.ReadTimeout, "Read timeout")
	f.Float64("rps", defaults.RequestsPerSecond, "Max requests per second across clients (0 = unlimited)")
	f.StringArrayP("header", "H", defaults.CustomHeaders, "Extra request header 'Name: Value' (repeatable)")
	f.String("user-agent", defaults.UserAgent, "User-Agent header")
	f.String("proxy", defaults.ProxyInput, "Proxy URL, comma-separated list or file")
	f.Bool("insecure", defaults.InsecureSkipVerify, "Skip TLS certificate verification")
	f.String("loglevel", defaults.Verbosity, "Log level: debug, info, warn, error")
	f.Bool("no-color", defaults.NoColor, "Disable coloured output")
	f.Bool("silent", defaults.Silent, "Only print errors")

	cmd.AddCommand(newAlgorithmsCommand())
	return cmd
}

func newAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the supported algorithm names and aliases",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range algorithm.Names() {
				alg, _ := algorithm.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", name, alg.Name())
			}
		},
	}
}

// loadConfig merges, lowest precedence first: defaults, config file,
// HASHES_* environment variables, flags and the positional url.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := config.GetDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	// header values may contain commas, which viper would split
	switch {
	case cmd.Flags().Changed("header"):
		headers, err := cmd.Flags().GetStringArray("header")
		if err != nil {
			return nil, err
		}
		cfg.CustomHeaders = headers
	case v.InConfig("header"):
		cfg.CustomHeaders = v.GetStringSlice("header")
	default:
		cfg.CustomHeaders = []string{}
	}
	if len(args) == 1 {
		cfg.TargetURL = args[0]
	}
	target, err := utils.NormalizeURL(cfg.TargetURL)
	if err != nil {
		return nil, err
	}
	cfg.TargetURL = target
	return cfg, nil
}

func runInjection(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.NoColor {
		color.NoColor = true
	}
	logger := utils.NewDefaultLogger(utils.StringToLogLevel(cfg.Verbosity), cfg.NoColor, cfg.Silent)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.ProxyInput != "" {
		cfg.ParsedProxies, err = utils.ParseProxyInput(cfg.ProxyInput, logger)
		if err != nil {
			return err
		}
		logger.Infof("Using %d proxies.", len(cfg.ParsedProxies))
	}
	logger.Debugf("Configuration: %s", cfg.String())

	summary, err := core.NewInjector(cfg, logger).Run(cmd.Context())
	if summary.RunID != "" && !cfg.Silent {
		report.Print(os.Stdout, summary, cfg.NoColor)
	}
	return err
}
