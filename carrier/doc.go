// Package carrier implements the union-find-backed set of live obs shared
// by every relation and function table in a Signature.
//
// Carrier generalizes the teacher's in-package disjoint-set (lvlath's
// graph.Kruskal inline parent/rank maps) from string vertex ids to dense
// Ob arrays, and adds a merge-callback hook, fixed at New, that receives each
// deprecated ob. Nothing in this module installs a callback that enqueues
// follow-up MergeTasks.
package carrier
