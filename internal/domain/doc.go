// Package domain defines the core types shared by the logical workflow graph,
// the canvas adapter and the synchronization engine.
//
// # Core Types
//
// Operator is a processing node with a fixed set of input and output ports.
// Its ports are derived from the operator type's metadata when it is created
// and never change afterwards.
//
// Link is a directed connection from an output port of one operator to an
// input port of another. A Link is only ever stored by the logical graph when
// both of its endpoints resolve to an existing operator and port.
//
// PortRef addresses a single port on a single operator. Point is a free
// coordinate on the canvas.
//
// LogicalPlan is the request body understood by the execution backend.
//
// # Errors
//
// ErrNotFound, ErrDuplicateIdentifier, ErrInvalidEndpoint, ErrMissingIdentifier and
// ErrUnknownOperatorType classify every failure raised by graph mutations and
// the operator builder. Callers match them with errors.Is.
//
// # Design Principles
//
// - Plain value types, copied on the way in and out of the stores
// - No knowledge of the canvas or of any transport
package domain
