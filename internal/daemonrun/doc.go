// Package daemonrun hosts the daemon side of `daemonkit run`: it wires
// configuration, the run logger and the lifecycle controller together and
// drives the heartbeat payload.
package daemonrun
