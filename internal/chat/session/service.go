// Package session keeps chat transcripts per lead and runs each visitor
// message through the advisor.
package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"lead_funnel_backend/internal/chat/advisor"
	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/platform/apperr"
	"lead_funnel_backend/platform/config"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/sanitize"
	"lead_funnel_backend/platform/store"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// MaxTranscript bounds the messages kept per lead.
const MaxTranscript = 200

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one line of a chat transcript. Assistant messages record the
// flow the session is in after them.
type Message struct {
	ID        string       `json:"id"`
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Kind      string       `json:"kind,omitempty"`
	Flow      advisor.Flow `json:"flow"`
	CreatedAt time.Time    `json:"timestamp"`
}

// Exchange is the outcome of one visitor message.
type Exchange struct {
	LeadID        string        `json:"leadId"`
	Message       Message       `json:"message"`
	Reply         Message       `json:"reply"`
	Interests     []string      `json:"extractedInterests"`
	Goals         []domain.Goal `json:"extractedGoals"`
	TypingDelayMs int64         `json:"typingDelayMs"`
}

// LeadDirectory is the lead side of a chat session.
type LeadDirectory interface {
	Exists(ctx context.Context, leadID string) error
	ApplyConversation(ctx context.Context, leadID string, interests []string, goals []domain.Goal) error
}

// Deps groups the collaborators of Service.
type Deps struct {
	Messages store.List[Message]
	Leads    LeadDirectory
	Config   config.ChatConfig
	Clock    clockwork.Clock
	Log      *logger.Logger
}

type Service struct {
	messages store.List[Message]
	leads    LeadDirectory
	cfg      config.ChatConfig
	clock    clockwork.Clock
	log      *logger.Logger
}

// NewService creates a Service. A nil message list keeps transcripts in process memory.
func NewService(deps Deps) *Service {
	if deps.Messages == nil {
		deps.Messages = store.NewMemoryList[Message](MaxTranscript)
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Service{
		messages: deps.Messages,
		leads:    deps.Leads,
		cfg:      deps.Config,
		clock:    deps.Clock,
		log:      deps.Log,
	}
}

// Greeting returns the opening message of the widget.
func (s *Service) Greeting() Message {
	g := advisor.Greeting()
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: g.Text, Kind: g.Kind, Flow: g.Flow, CreatedAt: s.clock.Now()}
}

// Send answers a visitor message, stores both sides of the exchange and merges
// any interests or goals it mentions into the lead.
func (s *Service) Send(ctx context.Context, leadID, text string) (Exchange, error) {
	text = sanitize.Text(text)
	if text == "" {
		return Exchange{}, apperr.Validation("message is required")
	}
	if s.leads != nil {
		if err := s.leads.Exists(ctx, leadID); err != nil {
			return Exchange{}, err
		}
	}

	flow, err := s.CurrentFlow(ctx, leadID)
	if err != nil {
		return Exchange{}, err
	}

	now := s.clock.Now()
	reply := advisor.Respond(text, flow)
	in := Message{ID: uuid.NewString(), Role: RoleUser, Content: text, Flow: flow, CreatedAt: now}
	out := Message{ID: uuid.NewString(), Role: RoleAssistant, Content: reply.Text, Kind: reply.Kind, Flow: reply.Flow, CreatedAt: now}

	for _, msg := range []Message{in, out} {
		if err := s.messages.Append(ctx, leadID, msg); err != nil {
			return Exchange{}, fmt.Errorf("store chat message: %w", err)
		}
	}

	exchange := Exchange{
		LeadID:        leadID,
		Message:       in,
		Reply:         out,
		Interests:     advisor.ExtractInterests(text),
		Goals:         advisor.ExtractGoals(text),
		TypingDelayMs: s.typingDelay().Milliseconds(),
	}

	if s.leads != nil && (len(exchange.Interests) > 0 || len(exchange.Goals) > 0) {
		if err := s.leads.ApplyConversation(ctx, leadID, exchange.Interests, exchange.Goals); err != nil {
			s.log.WithContext(ctx).Warn("chat lead update failed", "leadId", leadID, "error", err)
		}
	}

	if reply.Flow != flow {
		s.log.WithContext(ctx).Info("chat flow changed", "leadId", leadID, "from", flow, "to", reply.Flow)
	}
	return exchange, nil
}

// History returns the lead's transcript, oldest first.
func (s *Service) History(ctx context.Context, leadID string) ([]Message, error) {
	return s.messages.Range(ctx, leadID)
}

// CurrentFlow is the flow left by the last assistant message, general for a new session.
func (s *Service) CurrentFlow(ctx context.Context, leadID string) (advisor.Flow, error) {
	transcript, err := s.messages.Range(ctx, leadID)
	if err != nil {
		return "", fmt.Errorf("load chat transcript: %w", err)
	}
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == RoleAssistant && transcript[i].Flow.Valid() {
			return transcript[i].Flow, nil
		}
	}
	return advisor.FlowGeneral, nil
}

// typingDelay picks how long the widget shows the advisor typing.
func (s *Service) typingDelay() time.Duration {
	if s.cfg == nil {
		return 0
	}
	lo, hi := s.cfg.GetChatTypingDelayMin(), s.cfg.GetChatTypingDelayMax()
	if hi <= lo {
		return max(lo, 0)
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
}
