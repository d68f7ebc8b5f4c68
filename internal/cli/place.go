package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/macroplace/pkg/manifest"
	"github.com/matzehuels/macroplace/pkg/observability"
	"github.com/matzehuels/macroplace/pkg/place"
	"github.com/matzehuels/macroplace/pkg/render/plan"
)

const (
	formatSVG  = "svg"
	formatJSON = "json"
	formatPDF  = "pdf"
	formatPNG  = "png"
	formatDOT  = "dot"

	// pngScale is the raster scale factor for PNG exports.
	pngScale = 2.0
)

// placeOpts holds the command-line flags for the place command.
type placeOpts struct {
	output  string   // output file path (or base path for multiple formats)
	formats []string // output formats: "svg", "json", "pdf", "png"
	runs    int      // number of independent annealing runs
	seed    uint64   // base seed override
	fill    bool     // grow soft macros into dead space after annealing
	align   bool     // snap macros to the outline and to each other
	labels  bool     // draw macro names in the floorplan SVG
	edges   bool     // draw net connections in the floorplan SVG
	noCache bool     // disable the layout cache entirely
	refresh bool     // bypass cache lookup, still store the result
	watch   bool     // show live annealing progress
}

// placeCommand creates the place command for annealing a manifest into a layout.
//
// Default settings:
//   - runs: 10 parallel seeded runs, lowest-cost winner
//   - formats: svg
//   - fill and align: off (the raw annealed layout is returned)
func (c *CLI) placeCommand() *cobra.Command {
	var formatsStr string
	opts := placeOpts{}

	cmd := &cobra.Command{
		Use:   "place <manifest.toml>",
		Short: "Anneal a floorplan manifest into a placed layout",
		Long: `Anneal a floorplan manifest into a placed layout.

The manifest describes the fixed outline, the macros to place, the nets
connecting them, and optional constraint regions. The command runs several
independent annealing runs in parallel and keeps the lowest-cost result.

Examples:
  macroplace place design.toml                     # SVG next to the manifest
  macroplace place design.toml -f json,svg,png     # Multiple formats
  macroplace place design.toml --runs 32 --seed 7  # More runs, fixed seed
  macroplace place design.toml --watch             # Live progress view`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats, false); err != nil {
				return err
			}
			return c.runPlace(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().IntVar(&opts.runs, "runs", 0, "number of independent runs (default 10)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "base random seed (overrides the manifest)")
	cmd.Flags().BoolVar(&opts.fill, "fill", false, "grow soft macros into dead space after annealing")
	cmd.Flags().BoolVar(&opts.align, "align", false, "snap macros to the outline and to each other")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw macro names in the floorplan")
	cmd.Flags().BoolVar(&opts.edges, "edges", false, "draw net connections in the floorplan")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache lookup and recompute")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "show live annealing progress")

	return cmd
}

// runPlace loads the manifest, anneals it, and writes the requested outputs.
func (c *CLI) runPlace(ctx context.Context, input string, opts *placeOpts) error {
	prob, err := manifest.Load(input)
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded %s: %d macros, %d nets", input, len(prob.MacroNames()), len(prob.Config.Nets))

	popts := place.Options{
		Config:        prob.Config,
		Soft:          prob.Soft,
		Hard:          prob.Hard,
		Blockages:     prob.Blockages,
		NumRuns:       opts.runs,
		FillDeadSpace: opts.fill,
		Align:         opts.align,
		Refresh:       opts.refresh,
	}
	if opts.seed != 0 {
		popts.Config.Schedule.Seed = opts.seed
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)

	var layout *place.Layout
	var cached bool
	if opts.watch {
		layout, err = c.placeWatched(ctx, runner, prob, popts)
	} else {
		layout, cached, err = c.placeWithSpinner(ctx, runner, popts)
	}
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Placed %d macros", len(layout.Blocks)))
	printSuccess("Annealed %s", displayName(prob.Name, input))
	printStats(len(layout.Blocks), layout.Cost, cached)
	if !layout.Fitting() {
		printWarning("layout exceeds the outline; relax constraints or add steps")
	}

	paths, err := writeLayoutFiles(layout, prob, opts, input)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	if containsFormat(opts.formats, formatJSON) {
		printNextStep("Visualize nets", fmt.Sprintf("macroplace render %s -f dot", basePath(opts.output, input)+".json"))
	}
	return nil
}

// placeWithSpinner anneals with a terminal spinner for feedback.
func (c *CLI) placeWithSpinner(ctx context.Context, runner *place.Runner, popts place.Options) (*place.Layout, bool, error) {
	s := newSpinnerWithContext(ctx, "Annealing...")
	s.Start()
	layout, cached, err := runner.PlaceWithCacheInfo(ctx, popts)
	s.Stop()
	if s.Cancelled() && err != nil {
		return nil, false, ctx.Err()
	}
	return layout, cached, err
}

// placeWatched anneals with a live bubbletea progress view. The cache is
// bypassed so every run is visible.
func (c *CLI) placeWatched(ctx context.Context, runner *place.Runner, prob *manifest.Problem, popts place.Options) (*place.Layout, error) {
	popts.Refresh = true

	ch := make(chan tea.Msg, 256)
	observability.SetPlaceHooks(&teaPlaceHooks{ch: ch})
	defer observability.Reset()

	var layout *place.Layout
	var placeErr error
	go func() {
		layout, placeErr = runner.Place(ctx, popts)
		ch <- placeFinishedMsg{err: placeErr}
	}()

	model := NewAnnealModel(displayName(prob.Name, ""), popts.Config.Schedule.MaxNumStep, ch)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(AnnealModel); ok && m.Quit {
		// Keep draining so the annealing goroutine can finish and exit.
		go func() {
			for msg := range ch {
				if _, ok := msg.(placeFinishedMsg); ok {
					return
				}
			}
		}()
		return nil, context.Canceled
	}
	if placeErr != nil {
		return nil, placeErr
	}
	return layout, nil
}

// writeLayoutFiles writes the layout in every requested format and returns
// the written paths.
func writeLayoutFiles(layout *place.Layout, prob *manifest.Problem, opts *placeOpts, input string) ([]string, error) {
	base := basePath(opts.output, input)
	single := len(opts.formats) == 1 && opts.output != ""

	var paths []string
	for _, format := range opts.formats {
		path := base + "." + format
		if single {
			path = opts.output
		}

		data, err := encodeLayout(layout, prob, opts, format)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// encodeLayout renders the layout into one output format.
func encodeLayout(layout *place.Layout, prob *manifest.Problem, opts *placeOpts, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		return place.MarshalLayout(layout)
	case formatSVG:
		return plan.RenderSVG(layout, planOptions(prob, opts)...), nil
	case formatPDF:
		return plan.RenderPDF(layout, planOptions(prob, opts)...)
	case formatPNG:
		return plan.RenderPNG(layout, pngScale, planOptions(prob, opts)...)
	}
	return nil, fmt.Errorf("invalid format: %s", format)
}

// planOptions assembles the floorplan renderer options from the manifest and flags.
func planOptions(prob *manifest.Problem, opts *placeOpts) []plan.SVGOption {
	var po []plan.SVGOption
	if len(prob.Blockages) > 0 {
		po = append(po, plan.WithBlockages(prob.Blockages))
	}
	if len(prob.Config.Fences) > 0 {
		po = append(po, plan.WithFences(prob.Config.Fences))
	}
	if len(prob.Config.Guides) > 0 {
		po = append(po, plan.WithGuides(prob.Config.Guides))
	}
	if opts.edges && len(prob.Config.Nets) > 0 {
		po = append(po, plan.WithNets(prob.Config.Nets, prob.MacroNames()))
	}
	if opts.labels {
		po = append(po, plan.WithLabels())
	}
	return po
}

// displayName prefers the manifest's name, falling back to the file name.
func displayName(name, input string) string {
	if name != "" {
		return name
	}
	if input == "" {
		return "floorplan"
	}
	return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
}

// validFormats is the set of supported output formats. DOT is only
// meaningful for the render command's net graph view.
var validFormats = map[string]bool{
	formatSVG:  true,
	formatJSON: true,
	formatPDF:  true,
	formatPNG:  true,
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string, allowDOT bool) error {
	for _, f := range formats {
		if validFormats[f] || (allowDOT && f == formatDOT) {
			continue
		}
		return fmt.Errorf("invalid format: %s", f)
	}
	return nil
}

// containsFormat reports whether format is in formats.
func containsFormat(formats []string, format string) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] || ext == "."+formatDOT {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
