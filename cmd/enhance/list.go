package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"image-enhancer/internal/algorithms"
	"image-enhancer/internal/core"
	"image-enhancer/internal/imageio"
	"image-enhancer/internal/presets"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the filter presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tBRIGHTNESS\tCONTRAST\tSATURATION\tSHARPNESS\tSEPIA\tDESCRIPTION")
			for _, p := range presets.All() {
				o := p.Override
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
					p.Name, optional(o.Brightness), optional(o.Contrast), optional(o.Saturation),
					optional(o.Sharpness), p.ApplySepia, p.Description)
			}
			return tw.Flush()
		},
	}
}

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params [name]",
		Short: "List parameter domains, interpolations and export formats",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var names []string
			for _, pi := range core.ParameterInfos() {
				names = append(names, pi.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			infos := core.ParameterInfos()
			if len(args) == 1 {
				pi, ok := core.LookupParameter(args[0])
				if !ok {
					return &core.ParamError{Field: args[0], Reason: "unknown parameter"}
				}
				infos = []core.ParameterInfo{pi}
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMIN\tMAX\tSTEP\tDEFAULT\tDESCRIPTION")
			for _, pi := range infos {
				fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\t%s\n", pi.Name, pi.Min, pi.Max, pi.Step, pi.Default, pi.Description)
			}
			if err := tw.Flush(); err != nil || len(args) == 1 {
				return err
			}

			fmt.Fprintln(out, "\nInterpolations:")
			for _, name := range algorithms.InterpolationNames() {
				interp, _ := algorithms.ParseInterpolation(name)
				fmt.Fprintf(out, "  %-16s %s\n", name, interp.Description())
			}

			fmt.Fprintln(out, "\nExport formats:")
			for _, f := range imageio.Formats() {
				fmt.Fprintf(out, "  %s\n", f)
			}
			return nil
		},
	}
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
