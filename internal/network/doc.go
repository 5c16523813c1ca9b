// Package network provides the in-process network client of a validator
// node.
//
// A node runs one primary and several workers. They talk to each other
// through local handlers rather than over the wire, but they start in no
// particular order. NetworkClient is the registry through which each role
// publishes its handler once it is ready and through which the other roles
// find it:
//
//   - registration: SetWorkerToPrimaryLocalHandler, SetPrimaryToWorkerLocalHandler,
//     SetWorkerToWorkerLocalHandler
//   - discovery: bounded retry that tolerates out-of-order startup
//   - lifecycle: Shutdown, a one-way transition observed by every caller
//   - façades: PrimaryToOwnWorkerClient and WorkerToOwnPrimaryClient
//
// All state lives behind a single RWMutex. Lookups only hold the read lock
// for a point-in-time check and never while waiting.
package network
