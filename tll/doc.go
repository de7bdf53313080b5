// Package tll models the game's triply linked list node.
//
// A node has three outgoing links (a, b, c), a few flags, an index, a string
// and three opaque data pointers. The game uses the structure for aircraft
// loadouts and keyboard input tables. Links form arbitrary graphs: shared
// children and cycles are common.
//
// Nodes live in an Arena and refer to each other by ID; ID 0 is the null
// link. Explore and Print walk the graph from a root and visit every node
// once, so cycles terminate. Load copies a graph out of a linear memory into
// an arena and Store writes one back as 0x60-byte records.
package tll
