// Package labels builds the label sets kconsole puts on the objects it
// creates: kubevirt template labels on virtual machines and the
// app.kubernetes.io/part-of grouping on event sources.
package labels
