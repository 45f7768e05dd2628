// Package lifecycle implements the experiment status state machine.
//
// Valid transitions:
//
//	draft ──► approved ──► running ◄──► paused
//	                          │            │
//	                          ├──► completed ◄┤
//	                          └──► cancelled ◄┘
//
// completed and cancelled are terminal. The functions here are pure; callers
// hold the experiment's lock while applying them.
package lifecycle
