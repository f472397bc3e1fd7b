// Package bag provides the PropertyBag: the generic, string-keyed value
// container used to carry reduction configuration across boundaries.
//
// This package contains value types and codecs only. It imports nothing
// internal; every other package depends on it. Bags have no validation of
// their own. Whether a bag is meaningful is decided by the schema of the
// State that consumes it.
//
// Key design constraints:
//   - Leaf values are bool, int64, float64 and string; containers are
//     ordered lists and nested bags. There is no null.
//   - Int and Float are distinct kinds and stay distinct through JSON.
//   - Canonical JSON is the only serialization used for hashing and
//     golden files.
//   - Flattened form uses dotted keys: {field}.low, {field}.N.key.
package bag
