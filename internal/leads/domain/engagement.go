package domain

import (
	"slices"
	"time"
)

// ContentType classifies a piece of content a visitor engaged with.
// Values outside the known set are kept as-is and score with the default weight.
type ContentType string

const (
	ContentBlog    ContentType = "blog"
	ContentVideo   ContentType = "video"
	ContentCourse  ContentType = "course"
	ContentWebinar ContentType = "webinar"
)

// ActionType classifies a tracked visitor interaction.
type ActionType string

const (
	ActionView     ActionType = "view"
	ActionClick    ActionType = "click"
	ActionDownload ActionType = "download"
	ActionShare    ActionType = "share"
	ActionComment  ActionType = "comment"
	ActionLike     ActionType = "like"
)

var knownActions = map[ActionType]bool{
	ActionView:     true,
	ActionClick:    true,
	ActionDownload: true,
	ActionShare:    true,
	ActionComment:  true,
	ActionLike:     true,
}

// Valid reports whether a is one of the tracked action kinds.
func (a ActionType) Valid() bool {
	return knownActions[a]
}

// ContentEngagement is one content item's interaction.
type ContentEngagement struct {
	ContentID       string      `json:"contentId"`
	Type            ContentType `json:"contentType"`
	Title           string      `json:"title"`
	TimeSpent       float64     `json:"timeSpent"`       // seconds
	Completion      float64     `json:"completionRate"`  // 0-100
	EngagementScore float64     `json:"engagementScore"` // 0-100, supplied by the client
	ViewedAt        time.Time   `json:"viewedAt"`
}

// UserAction is a tracked interaction event.
type UserAction struct {
	Type      ActionType `json:"type"`
	Target    string     `json:"target"`
	Timestamp time.Time  `json:"timestamp"`
	Value     string     `json:"value,omitempty"`
}

// Engagement is the aggregate behavioural signal of a lead. Its logs only grow.
type Engagement struct {
	ContentViewed []ContentEngagement `json:"contentViewed"`
	TimeSpent     float64             `json:"timeSpent"` // seconds, cumulative
	Actions       []UserAction        `json:"actions"`
	SessionCount  int                 `json:"sessionCount"`
	LastActive    time.Time           `json:"lastActive"`
}

// DistinctActionTypes counts the different kinds of actions in the log.
func (e Engagement) DistinctActionTypes() int {
	seen := make(map[ActionType]struct{}, len(e.Actions))
	for _, action := range e.Actions {
		seen[action.Type] = struct{}{}
	}
	return len(seen)
}

// DaysInactive returns whole days between LastActive and now.
// A lead that was never active, or is active in the future, reports 0.
func (e Engagement) DaysInactive(now time.Time) int {
	if e.LastActive.IsZero() || now.Before(e.LastActive) {
		return 0
	}
	return int(now.Sub(e.LastActive).Hours() / 24)
}

func (e Engagement) clone() Engagement {
	out := e
	out.ContentViewed = slices.Clone(e.ContentViewed)
	out.Actions = slices.Clone(e.Actions)
	return out
}
