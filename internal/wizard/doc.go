// Package wizard drives multi-step creation forms.
//
// A [Controller] owns one [form.State] and a fixed list of [Step]s. Steps are
// skipped statically: every Skip predicate runs once, in [New], against the
// initial state. [Controller.Advance] validates the active step before the
// index moves and [Controller.Submit] turns the owned fields of the active
// steps into a [Payload] and issues a single create request.
//
// Controller state is guarded by a mutex so that [Controller.Cancel] can be
// called from a signal handler while Submit blocks on the network. Cancel
// does not guarantee the request is aborted server side; a late response is
// discarded and Submit returns [ErrCancelled].
package wizard
