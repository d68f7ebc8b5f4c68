// Package anneal implements the Fast-Simulated-Annealing floorplanning
// engine.
//
// The engine searches for a non-overlapping arrangement of placeable macros
// inside a fixed rectangular outline, minimizing a weighted combination of
// area utilization, outline violation, wirelength, guidance, fence
// compliance, boundary adjacency, blockage overlap and notch waste.
//
// # Architecture
//
// A generic base engine ([core]) owns everything common to all macro
// variants: the sequence-pair layout representation, the packing sweep, the
// shared penalty terms, the cooling schedule and the accept/reject loop. Two
// concrete engines specialize it:
//
//   - [SoftCore] places soft macros (equal-area shape candidates) and adds
//     the boundary, macro-blockage and notch penalties plus dead-space
//     filling and cluster alignment post-processing.
//   - [HardCore] places hard macros (fixed dimensions, discrete
//     orientations) and adds the flip action.
//
// The element type is fixed per run: the base engine is parameterized with
// generics over the [Placeable] capability set rather than dispatching
// through an interface per macro access.
//
// # Determinism
//
// A core seeded with the same inputs and the same seed produces bit-identical
// results: all randomness flows through a single seeded source, and penalty
// terms are pure functions of macro state. Independent cores share no mutable
// state and may run fully in parallel (see package place).
//
// # Usage
//
//	sa, err := anneal.NewSoftCore(cfg, macros)
//	if err != nil {
//	    return err
//	}
//	sa.SetBlockages(blockages)
//	if err := sa.Initialize(); err != nil {
//	    return err
//	}
//	if err := sa.Run(); err != nil {
//	    return err
//	}
//	for _, m := range sa.Macros() {
//	    fmt.Println(m.Name(), m.X(), m.Y())
//	}
package anneal
