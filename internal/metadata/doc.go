// Package metadata supplies read-only instrument geometry to builders.
//
// Builders consult a Provider exactly once, while they are constructed, to
// derive defaults such as detector bank names or the sample geometry
// recorded with a run. Nothing here is consulted during Build.
//
// Two providers ship with the package:
//
//	Static        built-in table equivalent to the instrument parameter files
//	FileProvider  reads <dir>/<INSTRUMENT>_Parameters.yaml
//
// Both return errors instead of panicking when an instrument or file is
// unknown, missing or corrupt, so a caller trying several instruments can
// recover.
package metadata
