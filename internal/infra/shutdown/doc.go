// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT, SIGTERM, an explicit Trigger or context
// cancellation, then runs registered hooks in reverse registration order
// under a shared deadline.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, shutdown.WithLogger(log))
//	h.OnShutdown("redis", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
