// Package retry polls an operation with exponential backoff until it
// succeeds, fails permanently or the context ends.
//
// The console uses it to wait until a freshly created object becomes
// readable through the API after a wizard submission.
package retry
