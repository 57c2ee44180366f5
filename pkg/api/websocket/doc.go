// Package websocket provides real-time event streaming via WebSocket.
//
// Clients can connect to /api/events/ws to receive an event for every
// values operation the service answers. Adding ?operation=create limits
// the feed to a single operation.
package websocket
