// Package favorites implements the favorites store: an ordered set of movie ids kept in memory
// and mirrored to one durable storage slot.
//
// Every context (TUI session, CLI invocation, websocket connection) owns its own [Store]. A
// toggle writes memory and the durable slot together; other contexts sharing the backend are
// pushed the new value and reload without user action.
package favorites
