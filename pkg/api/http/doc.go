// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - The values resource under /api/values
//   - The operation event feed (WebSocket)
//   - API discovery documents and the Swagger UI page
//   - Health checks
//   - Prometheus metrics
package http
