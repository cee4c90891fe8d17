// Package paths provides path normalisation and the application's on-disk
// layout.
//
// # Directory Structure
//
//	<user config dir>/foldergraph/
//	  └── worlds/
//	      ├── index.json            (array of world index entries)
//	      ├── index.lock            (advisory lock for index writers)
//	      └── {id}-{worldName}.json (one payload per saved world)
//
// # Usage
//
//	dataDir, _ := paths.DataDir()
//	worlds := paths.Worlds(dataDir)
//
//	// Containment checks normalise both sides first
//	if paths.IsWithin(dest, src) {
//	    // dest is src or lies below it
//	}
package paths
