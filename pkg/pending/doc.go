// Package pending provides the FIFO buffers that hold notifications created
// while their presentation surface is not yet subscribed.
//
// A queue accumulates entries passively and is drained exactly once per
// readiness transition, never on a timer. Draining loops until the queue is
// empty so that entries enqueued synchronously by the forwarding sink are
// delivered in the same pass rather than dropped. Forwarding failures are
// reported to the caller for logging and do not block subsequent entries;
// delivery is at-most-once with no requeue.
package pending
