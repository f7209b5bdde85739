// Package dom provides the page model the content side works on.
//
// A Document wraps a golang.org/x/net/html tree and adds the two browser
// behaviors the rest of vegancheck depends on:
//   - subtree mutation notifications (OnSubtreeChanged), used to catch
//     purchase buttons added after the initial load
//   - click dispatch with bubbling (AddClickListener / Click)
//
// A Document is owned by a single execution context. Listener registration
// is safe for concurrent use, but tree mutation is not; callers serialize
// mutations through the owning context.
package dom
