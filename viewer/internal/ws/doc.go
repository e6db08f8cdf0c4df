// Package ws implements the WebSocket hub of the mandelbench viewer.
//
// Hub manages a set of connected clients and broadcasts the live benchmark
// reports to all of them on a configurable interval, and immediately after
// Notify is called (the viewer calls it whenever a report arrives).
//
// New(store, interval) creates a Hub.
// Hub.Run(ctx) starts the broadcast loop; it blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// reports immediately on connect, then streams updates.
//
// Message format sent to clients:
//
//	{
//	  "event": "reports",
//	  "data":  { /* same schema as GET /api/v1/snapshot */ }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The viewer mounts the hub at /ws/stream.
package ws
