// Package catalog recommends promotable content to leads and keeps the
// recommendations the routing engine sent so the site can render them.
package catalog

import (
	"slices"
	"strings"

	"lead_funnel_backend/internal/leads/domain"
)

// Item is one piece of promotable content.
type Item struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Catalog is the ordered list of promotable content. Order is preference.
type Catalog struct {
	items []Item
}

func NewCatalog(items ...Item) *Catalog {
	return &Catalog{items: slices.Clone(items)}
}

// DefaultCatalog returns the built-in promotion list.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Item{Title: "Complete Data Science Career Guide", URL: "/guide/data-science-career", Type: "guide"},
		Item{Title: "Machine Learning Interview Prep", URL: "/course/ml-interview-prep", Type: "course"},
		Item{Title: "Salary Negotiation Masterclass", URL: "/masterclass/salary-negotiation", Type: "masterclass"},
		Item{Title: "Tech Career Transition Stories", URL: "/success-stories", Type: "case-study"},
		Item{Title: "Free Coding Assessment", URL: "/assessment/coding-skills", Type: "assessment"},
	)
}

func (c *Catalog) Items() []Item {
	return slices.Clone(c.items)
}

// Unseen returns up to count items the lead has not viewed yet, in catalogue order.
// A view matches an item by content id against the item URL, or by title.
func (c *Catalog) Unseen(lead domain.Lead, count int) []Item {
	if count <= 0 {
		return []Item{}
	}
	viewedIDs := make(map[string]bool, len(lead.Engagement.ContentViewed))
	viewedTitles := make(map[string]bool, len(lead.Engagement.ContentViewed))
	for _, view := range lead.Engagement.ContentViewed {
		viewedIDs[view.ContentID] = true
		if view.Title != "" {
			viewedTitles[strings.ToLower(view.Title)] = true
		}
	}

	out := make([]Item, 0, count)
	for _, item := range c.items {
		if viewedIDs[item.URL] || viewedTitles[strings.ToLower(item.Title)] {
			continue
		}
		out = append(out, item)
		if len(out) == count {
			break
		}
	}
	return out
}
