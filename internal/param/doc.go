// Package param defines typed parameter descriptors and the schemas built
// from them.
//
// A Param describes one field of a State: its wire kind, whether it may be
// absent, its default, and an optional constraint. Params are declared once
// per State type in a Schema and never mutated afterwards; schemas are
// shared read-only by every State and Builder of that type.
//
// Check is the single entry point for accepting a value. It is pure: it
// either returns a deep copy of the accepted value (possibly widened, Int to
// Float) or a *TypeError naming the field, the expected kind and what was
// received. Enum members are matched case-insensitively and rewritten to
// their canonical spelling; unknown members always fail.
package param
