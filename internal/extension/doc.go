// Package extension runs the three browser contexts of vegancheck on top of
// the message bus.
//
// A Page owns the document: it arms purchase controls, extracts content on
// click and sends it to the Background, and answers the panel's manual
// trigger and logging messages. The Background acknowledges content at once
// and analyzes it asynchronously through the orchestrator. The Panel reads
// the shared store: the consume-once warning, the cached verdict for the
// active page, the avoided ingredients and the history. Closing the Panel
// disconnects its port, which clears the badge and any pending warning.
//
// Session wires all three for one page.
package extension
