// Package service coordinates the workflow editor for the HTTP layer.
//
// WorkflowService owns one logical graph, one canvas and the sync engine
// between them. Every call takes the service mutex, so the core sees one
// caller at a time and each mutation finishes its cascade before the next
// starts. Logical changes and execution results are republished on the
// EventBus for SSE clients.
//
// Canvas gestures (DrawLink, MoveLinkEnd, DeleteCell) go through the
// in-memory surface exactly as a browser would, and reach the logical graph
// only through the sync engine.
package service
