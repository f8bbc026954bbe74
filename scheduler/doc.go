// Package scheduler implements the multi-threaded task dispatcher of
// spec.md §4.6: one queue per task arity plus a MergeTask queue and an
// AssumeTask queue, a strict readers-writer lock separating ordinary
// (shared) task execution from merge (unique) execution, and
// merge-induced cancellation of queued tasks that reference a deprecated
// ob.
//
// Grounded on gitrdm-gokando's internal/parallel.WorkerPool for the
// channel-based shutdown handshake (close-once signal channel, errgroup
// in place of its WaitGroup) and on original_source/src/engine/scheduler.hpp
// and original_source/src/atlas/scheduler.cpp for the strict-mutex /
// per-arity-queue / merge-cancellation algorithm itself, which the C++
// sources only partially implement (the header's own TODO notes the
// insert/remove/merge constraints were never finished).
package scheduler
