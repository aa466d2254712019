package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"yaani/internal/config"
	"yaani/internal/ctxlog"
	"yaani/internal/inventory"
	"yaani/internal/source"
)

const (
	defaultConfigFile = "netbox.yml"
	envPrefix         = "YAANI"
)

var (
	errListOrHost = errors.New("exactly one of --list or --host is required")
	errFormat     = errors.New("unsupported output format")
)

// settings are the resolved command-line options (flag > env > default).
type settings struct {
	Config    string `mapstructure:"config"`
	List      bool   `mapstructure:"list"`
	Host      string `mapstructure:"host"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	Workers   int    `mapstructure:"workers"`
	Format    string `mapstructure:"format"`
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "yaani",
		Short: "Ansible dynamic inventory backed by NetBox",
		Long: `yaani builds an Ansible dynamic inventory from NetBox records.

Import statements in the configuration file select NetBox endpoints; group_by
and host_vars expressions shape the groups and host variables.`,
		Example: `  # Full inventory as Ansible expects it
  yaani --list

  # Variables of a single host
  yaani --host sw1

  # Human-readable view with another configuration
  NETBOX_CONFIG_FILE=lab.yml yaani --list --format table`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}

			return run(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "configuration file (default $NETBOX_CONFIG_FILE, then "+defaultConfigFile+")")
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")

	f := cmd.Flags()
	f.Bool("list", false, "print the whole inventory")
	f.String("host", "", "print the variables of one host")
	f.Int("workers", inventory.DefaultWorkers, "records evaluated concurrently")
	f.String("format", "json", "output format: json or table")

	for _, name := range []string{"config", "log-level", "log-format"} {
		_ = v.BindPFlag(name, pf.Lookup(name))
	}

	for _, name := range []string{"list", "host", "workers", "format"} {
		_ = v.BindPFlag(name, f.Lookup(name))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("config", envPrefix+"_CONFIG", "NETBOX_CONFIG_FILE")
	v.SetDefault("config", defaultConfigFile)

	cmd.AddCommand(newCheckCmd(v))

	return cmd
}

func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("unable to decode settings: %w", err)
	}

	return s, nil
}

func run(ctx context.Context, s settings, stdout, stderr io.Writer) error {
	if s.List == (s.Host != "") {
		return errListOrHost
	}

	if s.Format != "json" && s.Format != "table" {
		return fmt.Errorf("%w: %q", errFormat, s.Format)
	}

	ctx = ctxlog.WithLogger(ctx, newLogger(s.LogLevel, s.LogFormat, stderr))

	f, plan, err := loadPlan(ctx, s.Config)
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(f, s.Config)
	if err != nil {
		return err
	}

	b := inventory.NewBuilder(fetcher, inventory.WithWorkers(s.Workers))

	if s.List {
		inv, err := b.Build(ctx, plan)
		if err != nil {
			return err
		}

		var n int
		if s.Format == "table" {
			n, err = fmt.Fprintln(stdout, inv.Table())
		} else {
			n, err = writeJSON(stdout, inv)
		}

		if err != nil {
			return err
		}

		ctxlog.FromContext(ctx).Info("inventory written",
			"groups", humanize.Comma(int64(len(inv.Groups))),
			"hosts", humanize.Comma(int64(len(inv.HostVars))),
			"size", humanize.Bytes(uint64(n)),
		)

		return nil
	}

	vars, err := b.Host(ctx, plan, s.Host)
	if err != nil {
		return err
	}

	if s.Format == "table" {
		_, err = fmt.Fprintln(stdout, inventory.HostVarsTable(s.Host, vars))
		return err
	}

	_, err = writeJSON(stdout, vars)

	return err
}

// loadPlan reads and compiles the configuration. Warnings and infos are
// logged; any error diagnostic aborts.
func loadPlan(ctx context.Context, path string) (*config.File, *inventory.Plan, error) {
	logger := ctxlog.FromContext(ctx)

	f, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	plan, res := config.Compile(f)

	for _, d := range res.Warnings {
		logger.Warn(d.Message, "code", d.Code, "import", d.Import, "field", d.Field)
	}

	for _, d := range res.Infos {
		logger.Info(d.Message, "code", d.Code, "import", d.Import, "field", d.Field)
	}

	if err := res.Error(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	return f, plan, nil
}

// newFetcher picks the record source. A relative source path is resolved
// against the configuration file's directory.
func newFetcher(f *config.File, configPath string) (inventory.Fetcher, error) {
	if src := f.NetBox.Source; src != "" {
		if !filepath.IsAbs(src) {
			src = filepath.Join(filepath.Dir(configPath), src)
		}

		file, err := source.LoadFile(src)
		if err != nil {
			return nil, err
		}

		return file, nil
	}

	api := f.NetBox.API

	return source.NewClient(api.URL, api.Token,
		source.WithTimeout(api.Timeout),
		source.WithPageSize(api.PageSize),
	), nil
}

func writeJSON(w io.Writer, v any) (int, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 0, err
	}

	return w.Write(append(data, '\n'))
}
