package main

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"yaani/internal/config"
	"yaani/internal/diagnostic"
)

var planDump = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                8,
}

func newCheckCmd(v *viper.Viper) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}

			return check(s.Config, verbose, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "dump the compiled plan")

	return cmd
}

func check(path string, verbose bool, out io.Writer) error {
	f, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	plan, res := config.Compile(f)

	printDiagnostics(out, res.ForImport(""))

	for _, st := range f.NetBox.Imports {
		printDiagnostics(out, res.ForImport(st.Name))
	}

	if res.HasErrors() {
		return fmt.Errorf("%s: %d configuration error(s)", path, len(res.Errors))
	}

	fmt.Fprintf(out, "%s: ok, %d import statement(s)\n", path, len(plan.Imports))

	if verbose {
		planDump.Fdump(out, plan)
	}

	return nil
}

func printDiagnostics(out io.Writer, diags []diagnostic.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(out, "%s: %s\n", d.Severity, d)
	}
}
