// Package dispatch delivers engine notifications to collaborators off the request path.
//
// A Dispatcher owns one worker goroutine draining a bounded queue, so
// notifications are delivered in the order they were enqueued. Enqueue never
// blocks: when the queue is full the notification is dropped and counted.
// Delivery failures are logged, counted and reported to an error callback;
// they never propagate back to the caller that produced the notification.
package dispatch
