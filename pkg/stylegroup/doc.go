// Package stylegroup classifies graphic elements into groups that share one
// cascade of style rules, and orders those groups for drawing.
//
// # Groups
//
// A [Group] is keyed by the ids of its matching rules (see [style.Key]). Every
// member sits in one of two partitions:
//
//   - bulk: drawn with the group's shared style, pushed once per frame
//   - dynamic: drawn with a per-element style (ui.color, ui.size, ...)
//
// Independently of the partition, a member may carry an event record listing
// the interaction events (clicked, selected) pushed on it. Add, Remove and
// moves between partitions swap the last entry into the vacated slot, so
// indices stay dense and every operation is O(1).
//
// Addressing an element through a group it is not a member of is a bookkeeping
// bug in the caller and panics with an [errors.ErrCodePrecondition] error.
//
// # Painting
//
// [Group.Paint] drives a [Painter] through the three passes (bulk, dynamic,
// events), activating each event member's events on the group while it is
// drawn so [Group.Style] resolves the event alternatives.
//
// # Sets
//
// A [Set] owns all groups of a view. It creates a group when the first element
// with a new rule combination arrives, releases it when the last one leaves,
// and exposes the groups partitioned into z-index layers via [Set.ZIndex].
// Replacing the style sheet with [Set.SetStyleSheet] rebuilds every group while
// keeping each element's dynamic flag and events.
package stylegroup
