// Package render provides visualization rendering for scanned repositories.
//
// The [depgraph] subpackage converts a repository profile's direct
// dependencies into Graphviz DOT and rasterizes the result to SVG or PNG
// via the embedded Graphviz engine. Rendering is deterministic: the same
// profile always produces the same DOT text, which keeps render caching
// effective.
package render
