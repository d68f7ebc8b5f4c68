// Package pkg provides the core libraries for macroplace floorplanning.
//
// # Overview
//
// Macroplace packs rectangular macros into a fixed outline by simulated
// annealing. The pkg directory is organized into three main areas:
//
//  1. [anneal] - Domain logic (sequence pairs, penalties, the Fast-SA engine)
//  2. [place] - Orchestration (parallel runs, caching, layout extraction)
//  3. [render] - Visualization (floorplan SVG, graphviz net graphs)
//
// Supporting packages: [geometry] and [macro] hold the shared primitives,
// [manifest] parses TOML problem descriptions, [cache], [errors],
// [observability] and [buildinfo] carry the ambient infrastructure.
//
// # Architecture
//
// The typical data flow through macroplace:
//
//	TOML manifest
//	         ↓
//	    [manifest] package (parse + validate the problem)
//	         ↓
//	    [place] package (parallel seeded runs, lowest cost wins)
//	         ↓
//	    [anneal] package (sequence-pair perturbation + Fast-SA)
//	         ↓
//	    [render] package (floorplan and net graph views)
//	         ↓
//	    SVG/PDF/PNG/JSON output
//
// # Quick Start
//
//	prob, err := manifest.Load("design.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	runner := place.NewRunner(nil, nil, nil)
//	layout, err := runner.Place(ctx, place.Options{
//	    Config: prob.Config,
//	    Soft:   prob.Soft,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	svg := plan.RenderSVG(layout)
package pkg
