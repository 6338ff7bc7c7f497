// Package listview renders table definitions in the terminal: a one-shot
// table for plain output, a detail page with its tab bar, and a Bubble Tea
// model that keeps a list current while its subscription changes.
package listview
