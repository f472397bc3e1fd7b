// Package loader reads user pipeline configuration files.
//
// A document has the nested shape of a pipeline bag:
//
//	facility:   ISIS
//	instrument: SANS2D
//	move:       { sample_offset: 0.053 }
//	wavelength: { wavelength_range: { low: 2.0, high: 14.0 }, wavelength_step: 0.125 }
//
// Concern sections may also be written as dotted keys ("move.sample_offset").
// Every section is applied over the derived defaults of a factory builder,
// so a document only needs the values it overrides.
//
// Three formats are accepted, chosen by file extension:
//
//   - .cue: evaluated with the CUE SDK. Constraints written in the file are
//     checked by CUE itself; the evaluated value must be concrete.
//   - .yaml, .yml: YAML 1.2 via gopkg.in/yaml.v3. Tags decide the value
//     kind, so 1 is an int and 1.0 a float.
//   - .json: the canonical bag JSON, as emitted by "sansstate bag".
//
// A directory is loaded as a CUE package.
//
// Errors carry file:line:col when the format records positions.
//
// Error codes:
//
//	E001: file could not be read
//	E002: unsupported file format
//	E003: syntax or evaluation error
//	E004: value has no property bag equivalent
//	E005: document shape (missing instrument, unknown concern)
//	E006: value rejected by a builder
package loader
