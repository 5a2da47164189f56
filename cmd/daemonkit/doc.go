// Package main hosts the daemonkit CLI entrypoint and command graph.
//
// The Cobra command tree maps start, stop, status and restart onto the
// lifecycle controller, and exposes the hidden run command that the detached
// child executes. Configuration is resolved once per invocation and shared by
// every subcommand.
package main
