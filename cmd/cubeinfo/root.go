package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
	"github.com/robert-malhotra/go-cubeaccess/internal/config"
	"github.com/robert-malhotra/go-cubeaccess/internal/logging"
	"github.com/robert-malhotra/go-cubeaccess/schema"
)

// app carries the resolved configuration to the subcommands.
type app struct {
	backend    cubeaccess.Backend
	configPath string
	cfg        config.Config
	doc        *schema.Document
}

func newRootCmd(backend cubeaccess.Backend) *cobra.Command {
	a := &app{backend: backend}
	defaults := config.Defaults()

	root := &cobra.Command{
		Use:           "cubeinfo",
		Short:         "Inspect coordinates and variables of array containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default cubeinfo.yaml in the user config dir or .)")
	pf.String("log-level", defaults["log-level"].(string), "log level: debug, info, warn, error")
	pf.StringSlice("nodata-attrs", defaults["nodata-attrs"].([]string), "attribute names consulted for nodata, in priority order")
	pf.Int("concurrency", defaults["concurrency"].(int), "containers described in parallel")
	pf.String("schema", "", "YAML schema to inject instead of introspecting the container")

	root.AddCommand(
		a.describeCmd(),
		a.coordCmd(),
		a.readCmd(),
		a.schemaCmd(),
	)
	return root
}

func (a *app) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd, a.configPath)
	if err != nil {
		return err
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Schema == "" {
		return nil
	}
	f, err := os.Open(cfg.Schema)
	if err != nil {
		return fmt.Errorf("opening schema: %w", err)
	}
	defer f.Close()
	doc, err := schema.Load(f)
	if err != nil {
		return err
	}
	a.doc = doc
	return nil
}

// open builds the storage unit for locator. A loaded schema is injected
// when it names the same locator or none at all.
func (a *app) open(locator string) (*cubeaccess.Unit, error) {
	opts := []cubeaccess.Option{cubeaccess.WithNoDataAttrs(a.cfg.NoDataAttrs...)}
	if a.doc != nil {
		if a.doc.Locator == "" || a.doc.Locator == locator {
			opts = append(opts, a.doc.Options()...)
		} else {
			logging.Debugf("schema is for %s, introspecting %s", a.doc.Locator, locator)
		}
	}
	return cubeaccess.New(a.backend, locator, opts...)
}
