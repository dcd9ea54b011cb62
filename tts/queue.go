package tts

import (
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

// BuildQueue turns units into a playback queue against the live page. Units
// whose references are all missing and whose source has no attached ancestor
// are dropped; the survivors are indexed densely from zero.
func BuildQueue(units []Unit, page Page) []QueueItem {
	queue := make([]QueueItem, 0, len(units))
	for _, u := range units {
		var fallback *html.Node
		if !anyAttached(page, u) {
			fallback = nearestAttached(page, u.SourceNode)
		}
		if !u.HasRefs() && fallback == nil {
			log.Debug("dropping unit without references", "kind", u.Kind)
			continue
		}
		queue = append(queue, QueueItem{
			Index:       len(queue),
			Unit:        u,
			FallbackRef: fallback,
		})
	}
	return queue
}

func anyAttached(page Page, u Unit) bool {
	if u.PrimaryRef != nil && page.IsAttached(u.PrimaryRef) {
		return true
	}
	for _, f := range u.FragmentRefs {
		if page.IsAttached(f) {
			return true
		}
	}
	return false
}

// nearestAttached walks from n upward and returns the first attached node.
func nearestAttached(page Page, n *html.Node) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if page.IsAttached(c) {
			return c
		}
	}
	return nil
}
