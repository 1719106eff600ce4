// Package canvas adapts a diagramming surface to the workflow editor.
//
// The surface itself is treated as a black box that holds elements and links
// and raises native change events. Adapter is the only consumer of those
// native events: it turns them into five normalized streams (element added,
// element deleted, link added, link deleted, link changed) and offers the
// mutations the synchronization engine needs to mirror the logical graph.
//
// A visual link may be dragged around with one end resting on a free point.
// Such a link is incomplete and has no logical counterpart; Classify decides
// completeness from the current endpoints alone.
//
// MemorySurface is an in-process surface used by the server and in tests.
// It removes the links attached to an element before the element itself and
// raises one native event per removed cell, the way browser diagramming
// libraries do.
package canvas
