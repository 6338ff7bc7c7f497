// Package eventsource implements the event source creation form: pick a
// source kind and its settings, choose a sink, name the source, review and
// create it.
//
// The sink step belongs to a [sink.Selector]; callers feed it the service,
// channel and broker collections with [Form.UpdateSinks] as they arrive.
package eventsource
