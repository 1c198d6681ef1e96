// Command flexbatt generates printable battery holder STL files.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/soypat/flexbatt"
	"github.com/soypat/flexbatt/mesh"
	"github.com/soypat/sdf"
	"github.com/soypat/sdf/render"
	"github.com/spf13/cobra"
)

var opts struct {
	typ        string
	n          int
	m          int
	out        string
	png        string
	resolution int
	stats      bool
	split      bool
	altLabels  bool
}

func main() {
	root := &cobra.Command{
		Use:          "flexbatt",
		Short:        "Generate 3D printable battery holders with flexing spring contacts",
		SilenceUsage: true,
		RunE:         run,
	}
	f := root.Flags()
	f.StringVarP(&opts.typ, "type", "t", "AA", "battery type, see the presets subcommand")
	f.IntVarP(&opts.n, "compartments", "n", 1, "compartments side by side")
	f.IntVarP(&opts.m, "cells", "m", 1, "cells in series per compartment")
	f.StringVarP(&opts.out, "out", "o", "", "output STL path (default <type>x<n>x<m>.stl)")
	f.StringVar(&opts.png, "png", "", "also render a PNG preview to this path")
	f.IntVar(&opts.resolution, "resolution", 400, "marching cubes cells along the longest axis")
	f.BoolVar(&opts.stats, "stats", false, "print mesh volume and bounds after rendering")
	f.BoolVar(&opts.split, "split", false, "write one STL per compartment")
	f.BoolVar(&opts.altLabels, "alternate-labels", false, "mirror polarity labels on odd rows")

	root.AddCommand(&cobra.Command{
		Use:   "presets",
		Short: "List the supported battery types",
		Run: func(cmd *cobra.Command, args []string) {
			printPresets(cmd)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	req := flexbatt.Request{
		Type:                flexbatt.BatteryType(opts.typ),
		Compartments:        opts.n,
		CellsPerCompartment: opts.m,
		AlternateRowLabels:  opts.altLabels,
	}
	h, err := flexbatt.Generate(flexbatt.DefaultConfig(), req)
	if err != nil {
		return err
	}
	out := opts.out
	if out == "" {
		out = fmt.Sprintf("%sx%dx%d.stl", strings.ToLower(opts.typ), opts.n, opts.m)
	}
	if opts.split {
		return writeSplit(h, out)
	}
	s := h.Solid()
	log.Printf("rendering %s at %d cells", out, opts.resolution)
	if err := render.CreateSTL(out, render.NewOctreeRenderer(s, opts.resolution)); err != nil {
		return fmt.Errorf("render %s: %w", out, err)
	}
	if opts.stats {
		if err := printStats(cmd, s); err != nil {
			return err
		}
	}
	if opts.png != "" {
		log.Printf("writing preview %s", opts.png)
		return stlToPNG(out, opts.png, defaultView)
	}
	return nil
}

// writeSplit renders each compartment to its own file, numbered from the
// lowest row.
func writeSplit(h *flexbatt.Holder, out string) error {
	base := strings.TrimSuffix(out, ".stl")
	for i, s := range h.CompartmentSolids() {
		name := fmt.Sprintf("%s_row%d.stl", base, i)
		log.Printf("rendering %s at %d cells", name, opts.resolution)
		if err := render.CreateSTL(name, render.NewOctreeRenderer(s, opts.resolution)); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
	}
	return nil
}

func printStats(cmd *cobra.Command, s sdf.SDF3) error {
	// Stats use a coarser mesh than the printed output: the volume
	// estimate converges quickly and the render dominates runtime.
	cells := opts.resolution / 2
	if cells < 64 {
		cells = 64
	}
	m, err := mesh.FromSDF(s, cells)
	if err != nil {
		return err
	}
	b := m.Bounds()
	sz := b.Max.Sub(b.Min)
	fmt.Fprintf(cmd.OutOrStdout(), "triangles: %d\n", len(m.Triangles))
	fmt.Fprintf(cmd.OutOrStdout(), "volume:    %.1f mm3\n", m.Volume())
	fmt.Fprintf(cmd.OutOrStdout(), "bounds:    %.1f x %.1f x %.1f mm\n", sz.X, sz.Y, sz.Z)
	fmt.Fprintf(cmd.OutOrStdout(), "shells:    %d\n", m.Components())
	return nil
}

func printPresets(cmd *cobra.Command) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tLENGTH\tDIAMETER\tSCREW")
	for _, t := range flexbatt.Types() {
		p, _ := flexbatt.Lookup(t)
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\tM%.1f\n", t, p.Length, p.Diameter, p.ScrewHoleD)
	}
	w.Flush()
}
