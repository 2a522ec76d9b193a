package email

import (
	"strings"

	"lead_funnel_backend/internal/leads/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	fallbackName          = "there"
	fallbackLatestContent = "our latest content"
	fallbackContentType   = "content"
	fallbackInterest      = "tech careers"
	fallbackTopic         = "Tech Career Acceleration"
	fallbackGoal          = "your career goals"
)

var topicsByInterest = map[string]string{
	"data-science":         "Breaking into Data Science",
	"machine-learning":     "ML Engineering Career Path",
	"software-engineering": "Software Engineering Excellence",
	"product-management":   "Product Management Mastery",
	"devops":               "DevOps and Cloud Architecture",
}

var goalPhrases = map[domain.Goal]string{
	domain.GoalCareerSwitch:  "career transition",
	domain.GoalSkillUpgrade:  "skill enhancement",
	domain.GoalPromotion:     "career advancement",
	domain.GoalCertification: "professional certification",
}

// Personalizer fills template placeholders from lead data.
type Personalizer struct {
	senderName string
}

func NewPersonalizer(senderName string) Personalizer {
	return Personalizer{senderName: senderName}
}

// Personalize returns a copy of t with subject and body placeholders replaced.
// Placeholders whose data is missing get a neutral fallback rather than staying literal.
func (p Personalizer) Personalize(t Template, lead domain.Lead) Template {
	r := p.replacer(lead)
	out := t
	out.Subject = r.Replace(t.Subject)
	out.Body = r.Replace(t.Body)
	return out
}

func (p Personalizer) replacer(lead domain.Lead) *strings.Replacer {
	name := strings.TrimSpace(lead.Name)
	if name == "" {
		name = fallbackName
	}

	latestContent, contentType := fallbackLatestContent, fallbackContentType
	// ContentViewed is kept in view order, so the last entry is the latest.
	if viewed := lead.Engagement.ContentViewed; len(viewed) > 0 {
		latest := viewed[len(viewed)-1]
		if latest.Title != "" {
			latestContent = latest.Title
		}
		if latest.Type != "" {
			contentType = string(latest.Type)
		}
	}

	interest, topic := fallbackInterest, fallbackTopic
	if len(lead.Interests) > 0 {
		interest = FormatInterest(lead.Interests[0])
		topic = TopicForInterest(lead.Interests[0])
	}

	goal := fallbackGoal
	if lead.Qualification != nil && len(lead.Qualification.Goals) > 0 {
		goal = FormatGoal(lead.Qualification.Goals[0])
	}

	return strings.NewReplacer(
		"{name}", name,
		"{email}", lead.Email,
		"{latest_content}", latestContent,
		"{content_type}", contentType,
		"{primary_interest}", interest,
		"{relevant_topic}", topic,
		"{primary_goal}", goal,
		"{sender_name}", p.senderName,
	)
}

// FormatInterest humanizes a tag: "cloud-engineering" becomes "Cloud Engineering".
func FormatInterest(tag string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "-", " "))
}

// TopicForInterest returns the masterclass topic for an interest tag.
func TopicForInterest(tag string) string {
	if topic, ok := topicsByInterest[tag]; ok {
		return topic
	}
	return fallbackTopic
}

// FormatGoal phrases a goal for prose.
func FormatGoal(goal domain.Goal) string {
	if phrase, ok := goalPhrases[goal]; ok {
		return phrase
	}
	return strings.ReplaceAll(string(goal), "-", " ")
}
