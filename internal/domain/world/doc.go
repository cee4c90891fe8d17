/*
Package world persists and refreshes folder graphs.

A world is a saved graph of folder nodes anchored to a root directory. The
Store keeps one payload file per world plus an index keyed by root path in
the worlds directory:

	worlds/
	  index.json              array of IndexEntry
	  index.lock              advisory lock serialising writers
	  {id}-{worldName}.json   {nodes, edges}

The Validator re-probes a graph against the live filesystem, dropping nodes
whose directory vanished and the edges that touched them.
*/
package world
