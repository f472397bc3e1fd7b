// Package pipeline aggregates one State per concern into the configuration
// of a whole reduction, and bridges it to and from bags.
//
// The bag form is the only thing an execution engine sees:
//
//	{
//	  "facility": "ISIS",
//	  "instrument": "SANS2D",
//	  "data": {...},
//	  "move": {...},
//	  ...
//	}
//
// Flatten turns it into dotted keys ("wavelength.wavelength_range.low").
// FromBag accepts either form.
//
// Cross-concern error codes:
//
//	E290  mandatory concern missing
//	E291  detector names of move and reduction disagree
package pipeline
