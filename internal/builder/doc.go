// Package builder assembles States.
//
// A Builder holds one mutable slot per field of its State's schema. Typed
// setters (SetSampleOffset, SetReductionMode, ...) and the dynamic Set check
// every value immediately and return a *param.TypeError on the spot; the
// cross-field rules of the State run only in Build, which reports all of
// them at once.
//
// Builders are obtained from a Factory, which dispatches on the
// (facility, instrument, concern) triple through an explicit Registry.
// Constructors derive defaults from instrument metadata exactly once; after
// that a Builder does no I/O. Builders are not safe for concurrent use.
//
// Typical use:
//
//	f, err := builder.NewFactory(builder.DefaultRegistry())
//	b, err := f.ReductionBuilder(ctx, instrument.ISIS, instrument.SANS2D, handle)
//	err = b.SetReductionMode(state.ModeMerged)
//	r, err := b.BuildReduction()
package builder
