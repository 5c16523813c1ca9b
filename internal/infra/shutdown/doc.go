// Package shutdown coordinates graceful teardown of the validator node.
//
// Hooks registered with OnShutdown run in reverse registration order once
// SIGINT or SIGTERM arrives, or once the context passed to Wait ends:
//
//	h := shutdown.NewHandler(10*time.Second, logger)
//	h.OnShutdown("http server", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
