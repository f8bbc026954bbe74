// Package task defines the value-type task records scheduled by the
// scheduler package (spec.md §3 "Task types", §9 "Tagged variants for
// tasks"). Each concrete type implements Task, whose References predicate
// drives merge-induced cancellation (spec.md §4.6).
package task
