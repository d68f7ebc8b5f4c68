package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/macroplace/pkg/errors"
	"github.com/matzehuels/macroplace/pkg/manifest"
	"github.com/matzehuels/macroplace/pkg/place"
	"github.com/matzehuels/macroplace/pkg/render/netgraph"
	"github.com/matzehuels/macroplace/pkg/render/plan"
)

const (
	vizPlan     = "plan"     // floorplan view: rectangles inside the outline
	vizNetgraph = "netgraph" // graphviz net connectivity view
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	vizType  string   // visualization type: "plan" or "netgraph"
	formats  []string // output formats: "svg", "pdf", "png", "dot"
	manifest string   // manifest path supplying nets and constraint regions
	detailed bool     // show dimensions and orientation in netgraph labels
	labels   bool     // draw macro names in the floorplan
}

// renderCommand creates the render command for visualizing a saved layout.
//
// The floorplan view needs only the layout JSON. The net graph view and the
// floorplan's net/constraint overlays additionally need the manifest the
// layout was placed from, passed with --manifest.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{vizType: vizPlan}

	cmd := &cobra.Command{
		Use:   "render <layout.json>",
		Short: "Render a placed layout to SVG, PDF, PNG, or DOT",
		Long: `Render a placed layout to SVG, PDF, PNG, or DOT.

Examples:
  macroplace render layout.json                           # Floorplan SVG
  macroplace render layout.json -f png,pdf                # Raster and print
  macroplace render layout.json -t netgraph -m design.toml  # Net graph
  macroplace render layout.json -m design.toml --labels   # Overlays + names`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats, true); err != nil {
				return err
			}
			if opts.vizType != vizPlan && opts.vizType != vizNetgraph {
				return fmt.Errorf("invalid type: %s (must be 'plan' or 'netgraph')", opts.vizType)
			}
			return c.runRender(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", opts.vizType, "visualization type: plan (default), netgraph")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png, dot (comma-separated)")
	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", "manifest file supplying nets and constraint regions")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show dimensions and orientation (netgraph)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw macro names (plan)")

	return cmd
}

// runRender loads the layout (and optionally its manifest) and renders it.
func (c *CLI) runRender(input string, opts *renderOpts) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read layout %s", input)
	}
	layout, err := place.UnmarshalLayout(data)
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded layout: %d blocks, cost %.4f", len(layout.Blocks), layout.Cost)

	var prob *manifest.Problem
	if opts.manifest != "" {
		prob, err = manifest.Load(opts.manifest)
		if err != nil {
			return err
		}
	}
	if opts.vizType == vizNetgraph && prob == nil {
		return errors.New(errors.ErrCodeInvalidInput, "the net graph view needs --manifest for net connectivity")
	}

	base := basePath(opts.output, input)
	single := len(opts.formats) == 1 && opts.output != ""

	for _, format := range opts.formats {
		path := base + "." + format
		if single {
			path = opts.output
		}

		data, err := renderLayout(layout, prob, opts, format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// renderLayout produces one output format for the selected view.
func renderLayout(layout *place.Layout, prob *manifest.Problem, opts *renderOpts, format string) ([]byte, error) {
	if opts.vizType == vizNetgraph {
		dot := netgraph.ToDOT(layout, prob.Config.Nets, prob.MacroNames(), netgraph.Options{Detailed: opts.detailed})
		switch format {
		case formatDOT:
			return []byte(dot), nil
		case formatSVG:
			return netgraph.RenderSVG(dot)
		case formatPDF:
			return netgraph.RenderPDF(dot)
		case formatPNG:
			return netgraph.RenderPNG(dot, pngScale)
		}
		return nil, fmt.Errorf("invalid format: %s", format)
	}

	po := planViewOptions(prob, opts)
	switch format {
	case formatSVG:
		return plan.RenderSVG(layout, po...), nil
	case formatPDF:
		return plan.RenderPDF(layout, po...)
	case formatPNG:
		return plan.RenderPNG(layout, pngScale, po...)
	case formatDOT:
		return nil, fmt.Errorf("format dot requires -t netgraph")
	}
	return nil, fmt.Errorf("invalid format: %s", format)
}

// planViewOptions assembles floorplan options; overlays need a manifest.
func planViewOptions(prob *manifest.Problem, opts *renderOpts) []plan.SVGOption {
	var po []plan.SVGOption
	if prob != nil {
		if len(prob.Blockages) > 0 {
			po = append(po, plan.WithBlockages(prob.Blockages))
		}
		if len(prob.Config.Fences) > 0 {
			po = append(po, plan.WithFences(prob.Config.Fences))
		}
		if len(prob.Config.Guides) > 0 {
			po = append(po, plan.WithGuides(prob.Config.Guides))
		}
		if len(prob.Config.Nets) > 0 {
			po = append(po, plan.WithNets(prob.Config.Nets, prob.MacroNames()))
		}
	}
	if opts.labels {
		po = append(po, plan.WithLabels())
	}
	return po
}
