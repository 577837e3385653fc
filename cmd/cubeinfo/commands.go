package main

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
	"github.com/robert-malhotra/go-cubeaccess/schema"
)

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <file>...",
		Short: "List the coordinates and variables of each container",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			units := make([]*cubeaccess.Unit, len(args))
			var g errgroup.Group
			g.SetLimit(a.cfg.Concurrency)
			for i, locator := range args {
				g.Go(func() error {
					u, err := a.open(locator)
					if err != nil {
						return err
					}
					units[i] = u
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, u := range units {
				if i > 0 {
					fmt.Fprintln(out)
				}
				describeUnit(out, u)
			}
			return nil
		},
	}
}

func describeUnit(w io.Writer, u *cubeaccess.Unit) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	section := r.NewStyle().Underline(true)

	fmt.Fprintln(w, title.Render(fmt.Sprintf("=== %s (%s) ===", u.Locator(), u.Backend().Name())))

	coords := u.Coordinates()
	fmt.Fprintln(w, section.Render(fmt.Sprintf("Coordinates: %d", len(coords))))
	for _, name := range sortedNames(coords) {
		c := coords[name]
		order := "descending"
		if c.Ascending() {
			order = "ascending"
		}
		if !c.HasBounds() {
			fmt.Fprintf(w, "  %-12s %-8s length=%d\n", name, c.DType, c.Length)
			continue
		}
		fmt.Fprintf(w, "  %-12s %-8s length=%d [%g .. %g] %s\n", name, c.DType, c.Length, c.Begin, c.End, order)
	}

	vars := u.Variables()
	fmt.Fprintln(w, section.Render(fmt.Sprintf("Variables: %d", len(vars))))
	for _, name := range sortedNames(vars) {
		v := vars[name]
		fmt.Fprintf(w, "  %-12s %-8s %v", name, v.DType, v.Dims)
		if v.HasNoData() {
			fmt.Fprintf(w, " nodata=%g", *v.NoData)
		}
		fmt.Fprintln(w)
	}
}

func (a *app) coordCmd() *cobra.Command {
	var (
		start, stop, step int
		begin, end        float64
	)
	cmd := &cobra.Command{
		Use:   "coord <file> <axis>",
		Short: "Print coordinate values by index slice or value range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.open(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()

			var idx cubeaccess.Index
			switch {
			case flags.Changed("begin") || flags.Changed("end"):
				if !flags.Changed("begin") || !flags.Changed("end") {
					return fmt.Errorf("--begin and --end must be given together")
				}
				idx = cubeaccess.Range{Begin: begin, End: end}
			case flags.Changed("start") || flags.Changed("stop") || flags.Changed("step"):
				c, ok := u.Coordinate(args[1])
				if !ok {
					break
				}
				s := cubeaccess.Slice{Start: start, Stop: c.Length, Step: step}
				if flags.Changed("stop") {
					s.Stop = stop
				}
				idx = s
			}

			data, s, err := u.GetCoord(args[1], idx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s index %s\n", args[1], data.DType, s)
			fmt.Fprintln(out, data.Data)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&start, "start", 0, "first index")
	f.IntVar(&stop, "stop", 0, "index past the last (default axis length)")
	f.IntVar(&step, "step", 1, "index step")
	f.Float64Var(&begin, "begin", math.NaN(), "first value of the range")
	f.Float64Var(&end, "end", math.NaN(), "last value of the range")
	for _, value := range []string{"begin", "end"} {
		for _, index := range []string{"start", "stop", "step"} {
			cmd.MarkFlagsMutuallyExclusive(value, index)
		}
	}
	return cmd
}

func (a *app) readCmd() *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:   "read <file> <variable>",
		Short: "Print a selection of a variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.open(args[0])
			if err != nil {
				return err
			}
			v, ok := u.Variable(args[1])
			if !ok {
				return fmt.Errorf("%w: %s", cubeaccess.ErrUnknownVariable, args[1])
			}
			extents := make([]int, len(v.Dims))
			for i, dim := range v.Dims {
				c, ok := u.Coordinate(dim)
				if !ok {
					return fmt.Errorf("%w: %s", cubeaccess.ErrUnknownAxis, dim)
				}
				extents[i] = c.Length
			}
			idx, err := parseSlices(expr, extents)
			if err != nil {
				return err
			}

			arr, err := u.ReadVariable(args[1], idx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %v\n", args[1], arr.DType, arr.Shape)
			if v.HasNoData() {
				fmt.Fprintf(out, "nodata %g\n", *v.NoData)
			}
			fmt.Fprintln(out, arr.Data)
			return nil
		},
	}
	cmd.Flags().StringVar(&expr, "slice", "", "comma-separated start:stop[:step] per dimension")
	return cmd
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file>",
		Short: "Write the container metadata as a YAML schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.open(args[0])
			if err != nil {
				return err
			}
			return schema.FromUnit(u).Write(cmd.OutOrStdout())
		},
	}
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
