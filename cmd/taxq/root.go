package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/xbrlmap/internal/core"
	"github.com/JonMunkholm/xbrlmap/internal/logging"
	"github.com/JonMunkholm/xbrlmap/internal/source"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
)

// annotationNoLoad marks commands that do not query taxonomies.
const annotationNoLoad = "noload"

// Output formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// app holds the persistent flags and the service built from them.
type app struct {
	out, errOut io.Writer

	dir         string
	glob        string
	entryPoint  string
	lang        string
	output      string
	logLevel    string
	rejectOpen  bool
	utrFile     string
	concurrency int
	service     *core.Service
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "taxq",
		Short: "Query XBRL taxonomies",
		Long: `taxq loads extracted taxonomy documents and answers questions about
their concepts, labels, dimensions and presentation networks.

Example:
  taxq --dir taxonomies list
  taxq --dir taxonomies concept vsme:Revenue --lang da
  taxq --dir taxonomies lookup --label "Revenue"
  taxq --dir taxonomies presentation 0 -o yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.output {
			case formatJSON, formatYAML:
			default:
				return fmt.Errorf("%w: unknown output format %q (json or yaml)", core.ErrInvalidRequest, a.output)
			}
			if cmd.Name() == "help" || cmd.Annotations[annotationNoLoad] != "" {
				return nil
			}
			return a.load(cmd.Context())
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	f := rootCmd.PersistentFlags()
	f.StringVarP(&a.dir, "dir", "d", "taxonomies", "Directory holding taxonomy documents")
	f.StringVar(&a.glob, "glob", source.DefaultGlob, "Documents to load below --dir")
	f.StringVarP(&a.entryPoint, "entry-point", "e", "", "Taxonomy to query (optional when one is loaded)")
	f.StringVarP(&a.lang, "lang", "l", "", "Label language")
	f.StringVarP(&a.output, "output", "o", formatJSON, "Output format: json or yaml")
	f.StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	f.BoolVar(&a.rejectOpen, "reject-open-hypercubes", false, "Fail taxonomies with open hypercubes")
	f.StringVar(&a.utrFile, "utr", "", "Unit registry file replacing the embedded one")
	f.IntVar(&a.concurrency, "concurrency", 4, "Documents built in parallel")

	rootCmd.AddCommand(a.listCmd())
	rootCmd.AddCommand(a.languagesCmd())
	rootCmd.AddCommand(a.conceptCmd())
	rootCmd.AddCommand(a.lookupCmd())
	rootCmd.AddCommand(a.dimsCmd())
	rootCmd.AddCommand(a.memberCmd())
	rootCmd.AddCommand(a.presentationCmd())
	rootCmd.AddCommand(a.importCmd())

	return rootCmd
}

// load builds every document below --dir into a private registry. Failed
// documents are reported on stderr and skipped.
func (a *app) load(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := source.NewDirSource(a.dir, a.glob)
	if err != nil {
		return err
	}

	var opts []taxonomy.Option
	if a.rejectOpen {
		opts = append(opts, taxonomy.RejectOpenHypercubes())
	}
	if a.utrFile != "" {
		opts = append(opts, taxonomy.WithUnitRegistry(taxonomy.UnitRegistryFromFile(a.utrFile)))
	}

	a.service = core.NewService(taxonomy.NewRegistry(), src, core.Options{
		Concurrency:     a.concurrency,
		Logger:          logging.New(a.errOut, a.logLevel, "text"),
		TaxonomyOptions: opts,
	})
	report, err := a.service.LoadAll(ctx)
	if err != nil {
		return err
	}
	for _, f := range report.Failed {
		fmt.Fprintf(a.errOut, "skipped %s: %v\n", f.Name, f.Err)
	}
	return nil
}

// print writes v in the selected output format.
func (a *app) print(v any) error {
	if a.output == formatYAML {
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded taxonomies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.print(a.service.Summaries())
		},
	}
}

func (a *app) languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "Show supported label languages and which one --lang selects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.service.Taxonomy(a.entryPoint)
			if err != nil {
				return err
			}
			return a.print(core.LanguagesFor(t, a.lang))
		},
	}
}

func (a *app) conceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "concept <qname>",
		Short: "Show one concept by QName",
		Long: `Show one concept by QName, as prefix:local or {namespace}local.

Example:
  taxq concept vsme:Revenue --lang da`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.lookup(core.LookupQName, args[0])
		},
	}
}

func (a *app) lookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Find a concept by QName, local name or standard label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				kind core.LookupKind
				key  string
				n    int
			)
			for _, k := range []core.LookupKind{core.LookupQName, core.LookupName, core.LookupLabel} {
				if cmd.Flags().Changed(string(k)) {
					kind = k
					key, _ = cmd.Flags().GetString(string(k))
					n++
				}
			}
			if n != 1 {
				return fmt.Errorf("%w: give exactly one of --qname, --name or --label", core.ErrInvalidRequest)
			}
			return a.lookup(kind, key)
		},
	}
	cmd.Flags().String("qname", "", "QName, as prefix:local or {namespace}local")
	cmd.Flags().String("name", "", "Local name in any namespace")
	cmd.Flags().String("label", "", "Standard label in the default language")
	return cmd
}

func (a *app) lookup(kind core.LookupKind, key string) error {
	c, err := a.service.LookupConcept(a.entryPoint, kind, key)
	if err != nil {
		return err
	}
	return a.print(core.NewConceptView(c, a.lang))
}

func (a *app) dimsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dims <qname>",
		Short: "Show the dimensional structure around a concept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.service.LookupConcept(a.entryPoint, core.LookupQName, args[0])
			if err != nil {
				return err
			}
			return a.print(core.NewDimensionsView(c))
		},
	}
}

func (a *app) memberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "member <primary-item> <member>",
		Short: "Find the explicit dimension of a primary item that allows a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := a.service.DimensionForMember(a.entryPoint, args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(map[string]string{
				"primaryItem": args[0],
				"member":      args[1],
				"dimension":   dim.String(),
			})
		},
	}
}

// presentationRows is one group with its rows.
type presentationRows struct {
	Group core.GroupView `json:"group" yaml:"group"`
	Rows  []core.RowView `json:"rows" yaml:"rows"`
}

func (a *app) presentationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presentation [index]",
		Short: "List presentation groups, or show the rows of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.service.Taxonomy(a.entryPoint)
			if err != nil {
				return err
			}
			lang := t.BestSupportedLanguage(a.lang)
			groups := core.GroupViews(t, lang)
			if len(args) == 0 {
				return a.print(groups)
			}

			i, err := strconv.Atoi(args[0])
			if err != nil || i < 0 || i >= len(groups) {
				return fmt.Errorf("%w: presentation group %q out of range (0-%d)",
					core.ErrInvalidRequest, args[0], len(groups)-1)
			}
			return a.print(presentationRows{
				Group: groups[i],
				Rows:  core.RowViews(t.Presentation()[i], lang),
			})
		},
	}
}
