// Package pkg provides the core libraries for Schematic schema diagrams.
//
// # Overview
//
// Schematic reads collection schemas, finds the reference fields that point
// from one collection to another, levels the resulting graph so referenced
// collections sit above the collections that reference them, and draws it
// as a pannable, zoomable diagram whose cards link to the console.
//
// # Architecture
//
//	Schema files / console API / Postgres / Mongo
//	         ↓
//	    [source] (fetch collections, optionally cached)
//	         ↓
//	    [schematic] (extract references, level, lay out, viewport, input)
//	         ↓
//	    [schematic/scene] (what is on screen for the current view)
//	         ↓
//	    [render/svg], [render/term], [render/nodelink], [graph]
//
// [pipeline] runs these stages with caching in front of fetch and render.
//
// # Quick Start
//
//	cs, _ := source.NewFile("schema.json").List(ctx)
//	d := schematic.NewDiagram(cs, schematic.DefaultConfig())
//	d.Fit()
//	out := svg.Render(scene.Build(d))
//
// # Main Packages
//
//   - [collection]: collection and field types, JSON and TOML decoding
//   - [digraph]: the reference graph and its leveling transforms
//   - [schematic]: layout, the interactive diagram and its sub-packages
//   - [source]: collection sources
//   - [cache]: file, Redis and no-op caches
//   - [pipeline]: fetch, layout and render orchestration
//   - [graph]: JSON documents for layouts and reference graphs
//   - [session]: viewer sessions for the HTTP server
//   - [observability]: optional hooks for logging and metrics
//
// [source]: github.com/matzehuels/schematic/pkg/source
// [schematic]: github.com/matzehuels/schematic/pkg/schematic
// [schematic/scene]: github.com/matzehuels/schematic/pkg/schematic/scene
// [render/svg]: github.com/matzehuels/schematic/pkg/render/svg
// [render/term]: github.com/matzehuels/schematic/pkg/render/term
// [render/nodelink]: github.com/matzehuels/schematic/pkg/render/nodelink
// [graph]: github.com/matzehuels/schematic/pkg/graph
// [pipeline]: github.com/matzehuels/schematic/pkg/pipeline
// [collection]: github.com/matzehuels/schematic/pkg/collection
// [digraph]: github.com/matzehuels/schematic/pkg/digraph
// [cache]: github.com/matzehuels/schematic/pkg/cache
// [session]: github.com/matzehuels/schematic/pkg/session
// [observability]: github.com/matzehuels/schematic/pkg/observability
package pkg
