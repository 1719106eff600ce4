// Package handler implements the HTTP API of the workflow editor.
//
// Logical routes (/api/operators, /api/links) mutate the workflow directly.
// Canvas routes (/api/canvas/...) replay user gestures on the canvas so the
// sync engine carries them to the workflow, the way a browser session would.
//
// Errors are returned as JSON {error, details}. Not-found maps to 404,
// duplicate ids to 409 and invalid endpoints or unknown operator types to 400.
package handler
