package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/IgorBayerl/covreport/internal/reportconfig"
	"github.com/IgorBayerl/covreport/internal/reporter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	// Register coverage report parsers.
	_ "github.com/IgorBayerl/covreport/internal/parser/cobertura"
	_ "github.com/IgorBayerl/covreport/internal/parser/gocover"
)

// optionFlags are the flags bound into viper, keyed by their config file name.
var optionFlags = []struct {
	name  string
	usage string
}{
	{"reports", "Coverage report file paths or patterns (semicolon-separated, e.g. \"./coverage/*.xml;./cover.out\")"},
	{"targetdir", "Output directory for reports (default \"coverage-report\")"},
	{"reporttypes", "Report types to generate (comma-separated: " + strings.Join(reporter.SupportedReportTypes(), ",") + ")"},
	{"sourcedirs", "Source directories (comma-separated)"},
	{"historydir", "Directory of the coverage history database; enables historic coverage"},
	{"tag", "Optional tag (e.g. build number)"},
	{"title", "Optional report title (default \"" + reportconfig.DefaultTitle + "\")"},
	{"verbosity", "Logging verbosity level (Verbose, Info, Warning, Error, Off)"},
	{"assemblyfilters", "Assembly filters, e.g. \"+Included;-Excluded\""},
	{"classfilters", "Class filters, e.g. \"+Included;-Excluded\""},
	{"filefilters", "File filters, e.g. \"+*.go;-*_gen.go\""},
	{"metricsfile", "Write pipeline metrics in Prometheus text format to this file"},
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	reportconfig.SetDefaults(v)
	var configFile string

	cmd := &cobra.Command{
		Use:   "covreport",
		Short: "Turns coverage reports into human readable reports.",
		Long: `covreport reads Cobertura XML and Go coverprofile files, merges them and
renders HTML, text and JSON reports. Historic coverage is kept in a SQLite
database when a history directory is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := reportconfig.LoadOptions(v, configFile)
			if err != nil {
				return err
			}
			if strings.TrimSpace(opts.Reports) == "" {
				_ = cmd.Usage()
				return fmt.Errorf("no report files given, use --reports")
			}
			return run(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "Optional config file (YAML, TOML or JSON)")
	for _, f := range optionFlags {
		flags.String(f.name, "", f.usage)
		if err := v.BindPFlag(f.name, flags.Lookup(f.name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", f.name, err))
		}
	}
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
