// Package syncer keeps the logical workflow graph and the canvas consistent.
//
// The engine is split into two halves that cannot reach each other:
//
//   - Outbound mirrors logical notifications onto the canvas. It holds only a
//     VisualWriter.
//   - Inbound turns normalized canvas events into logical mutations. It holds
//     only a LogicalWriter.
//
// Neither half keeps state about the graphs; the current contents of the
// logical graph are the source of truth for every idempotence check.
//
// A mutation applied by one half raises notifications on the other side (the
// canvas reports the element the outbound half just placed, the logical graph
// reports the link the inbound half just added). A shared gate records the
// entity ids a half is currently applying, and the opposite half drops the
// echoes for exactly those ids. Notifications for other ids, such as the
// links cascaded by an operator delete, are still mirrored.
//
// # Inbound protocol
//
// element deleted: delete the logical operator if it is still present. Its
// links go with it; the canvas link-delete events that follow are no-ops.
//
// link added: add a logical link when the visual link is complete.
//
// link deleted: delete the logical link when the visual link was ever
// complete and the logical graph still has a link with that id.
//
// link changed: delete the logical link with that id if present, then add it
// again with the new endpoints if the visual link is complete. Subscribers of
// the logical graph observe the delete before the add.
package syncer
