package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tsawler/blocktree"
	"github.com/tsawler/blocktree/config"
	"github.com/tsawler/blocktree/render"
)

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"format":       "output.format",
	"group-tables": "output.group_tables",
	"keep-margins": "layout.keepmargins",
}

// app is the state shared by the commands of one invocation
type app struct {
	cfgFile string
	cfg     config.Config
	log     zerolog.Logger
}

// load builds the configuration from defaults, the config file, the
// environment and the flags set on cmd, in increasing priority.
func (a *app) load(cmd *cobra.Command) error {
	v, err := config.NewViper()
	if err != nil {
		return err
	}
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	a.cfg, err = config.LoadViper(v, a.cfgFile)
	if err != nil {
		return err
	}
	a.log, err = a.cfg.Log.Logger(cmd.ErrOrStderr())
	return err
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	def := config.Default()

	root := &cobra.Command{
		Use:   "blocktree",
		Short: "Reconstruct structured documents from positioned text runs",
		Long: `blocktree groups the positioned text runs of an extraction backend into
headers, paragraphs, list items, tables and rules, restores the reading order
of multi-column pages and nests every block under its heading.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path (YAML)")
	root.PersistentFlags().String("log-level", def.Log.Level, "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", def.Log.Format, "log format (console, json)")

	root.AddCommand(newParseCmd(a), newConfigCmd(a), newVersionCmd())
	return root
}

func newParseCmd(a *app) *cobra.Command {
	var input, output string
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Build a document from a JSON page dump",
		Long: `Reads {"pages": [{"width", "height", "runs": [...]}]} from --input (or
stdin) and writes the reconstructed document in the chosen format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}
			pages, err := blocktree.DecodePages(in)
			if err != nil {
				return err
			}

			doc, warnings, err := blocktree.Parse(pages).
				WithConfig(a.cfg).
				WithLogger(a.log).
				DocumentContext(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info().
				Int("pages", len(doc.Pages)).
				Int("blocks", len(doc.Blocks)).
				Int("warnings", len(warnings)).
				Msg("document parsed")

			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return render.Write(w, doc, a.cfg.Output.Format)
			})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input JSON file (default stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringP("format", "f", def.Output.Format, "output format (json, markdown, html, text)")
	cmd.Flags().Bool("group-tables", def.Output.GroupTables, "fold each table's rows into one table block")
	cmd.Flags().Bool("keep-margins", def.Layout.KeepMargins, "keep running headers, footers and page numbers")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// The version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blocktree %s\n", version)
		},
	}
}

// writeOutput runs write against the named file, or against stdout when
// path is empty or "-".
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
