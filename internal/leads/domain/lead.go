package domain

import (
	"slices"
	"strings"
	"time"
)

// SourceLandingPage is the source of leads created on the first page visit.
const SourceLandingPage = "landing_page"

// Lead is the aggregate tracked per visitor.
type Lead struct {
	ID            string             `json:"id"`
	Email         string             `json:"email,omitempty"`
	Name          string             `json:"name,omitempty"`
	Phone         string             `json:"phone,omitempty"`
	Score         float64            `json:"score"`
	Status        Status             `json:"status"`
	Interests     []string           `json:"interests"`
	Engagement    Engagement         `json:"engagement"`
	Qualification *QualificationData `json:"qualificationData,omitempty"`
	Source        string             `json:"source"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// NewAnonymous returns the lead created for a first page visit.
func NewAnonymous(id, source string, now time.Time) Lead {
	if source == "" {
		source = SourceLandingPage
	}
	return Lead{
		ID:        id,
		Status:    StatusCold,
		Interests: []string{},
		Engagement: Engagement{
			ContentViewed: []ContentEngagement{},
			Actions:       []UserAction{},
			SessionCount:  1,
			LastActive:    now,
		},
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasEmail reports whether the lead left a contact address.
func (l Lead) HasEmail() bool {
	return strings.TrimSpace(l.Email) != ""
}

// HasQualification reports whether the lead answered any survey question.
func (l Lead) HasQualification() bool {
	return l.Qualification != nil
}

// HasInterest reports whether tag is among the lead's interests.
func (l Lead) HasInterest(tag string) bool {
	for _, interest := range l.Interests {
		if interest == tag {
			return true
		}
	}
	return false
}

// AddInterests appends tags that are not present yet, keeping insertion order.
func (l *Lead) AddInterests(tags ...string) int {
	added := 0
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || l.HasInterest(tag) {
			continue
		}
		l.Interests = append(l.Interests, tag)
		added++
	}
	return added
}

// AddGoals records goals on the qualification data, creating it when absent.
func (l *Lead) AddGoals(goals ...Goal) int {
	if len(goals) == 0 {
		return 0
	}
	if l.Qualification == nil {
		l.Qualification = &QualificationData{}
	}
	return l.Qualification.AddGoals(goals...)
}

// Clone returns a deep copy so callers can mutate without aliasing stored slices.
func (l Lead) Clone() Lead {
	out := l
	out.Interests = slices.Clone(l.Interests)
	out.Engagement = l.Engagement.clone()
	out.Qualification = l.Qualification.clone()
	return out
}
