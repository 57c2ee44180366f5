// Package values implements the values resource.
//
// Every operation answers with a fixed result:
//   - List always returns ["value1", "value2"]
//   - Get always returns "value", whatever the id
//   - Create, Update and Delete acknowledge without storing anything
//
// Nothing posted is ever visible to a later request. Each handled
// operation is counted and published as an audit event that carries
// the operation name, the id and the payload size, never the payload.
package values
