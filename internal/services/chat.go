package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	domainchat "github.com/yungbote/studybuddy-backend/internal/domain/chat"
	"github.com/yungbote/studybuddy-backend/internal/modules/chat"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/apierr"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
	"github.com/yungbote/studybuddy-backend/internal/platform/openai"
)

// contextDays is how many recent days feed previous-context and follow-up lookups.
const contextDays = 2

type ChatRequest struct {
	Subject string
	Query   string
	Topic   string
}

type HeatMapDay struct {
	Date     string   `json:"date"`
	Subjects []string `json:"subjects"`
}

type ChatService interface {
	Ask(ctx context.Context, req ChatRequest) (string, error)

	DayHistory(ctx context.Context, day string) (*domainchat.DayView, error)
	AllHistory(ctx context.Context) ([]domainchat.DayView, error)
	HeatMap(ctx context.Context, lowerBound, upperBound string) ([]HeatMapDay, error)
	Streak(ctx context.Context) (int, error)
	RecentTopics(ctx context.Context) ([]string, error)
	TopicHistory(ctx context.Context, topic string) ([]domainchat.DayView, error)
}

type chatService struct {
	db          *gorm.DB
	log         *logger.Logger
	histories   repos.ChatHistoryRepo
	detailsRepo repos.UserDetailsRepo
	classifier  *chat.Classifier
	responder   *chat.Responder
	llm         openai.Client
	now         Clock
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	histories repos.ChatHistoryRepo,
	detailsRepo repos.UserDetailsRepo,
	catalog *chat.Catalog,
	llm openai.Client,
) ChatService {
	return &chatService{
		db:          db,
		log:         log.With("service", "ChatService"),
		histories:   histories,
		detailsRepo: detailsRepo,
		classifier:  chat.NewClassifier(catalog),
		responder:   chat.NewResponder(catalog, nil),
		llm:         llm,
		now:         systemClock,
	}
}

func (cs *chatService) Ask(ctx context.Context, req ChatRequest) (string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return "", err
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Query = strings.TrimSpace(req.Query)
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Subject == "" || req.Query == "" {
		return "", apierr.BadRequest("invalid_request", "subject and query are required")
	}

	kind := cs.classifier.Classify(req.Query, req.Subject, req.Topic)
	cs.log.Debug("Chat query classified", "user_id", userID, "subject", req.Subject, "kind", kind.String())

	switch kind {
	case chat.KindInappropriate:
		reply := cs.responder.Inappropriate(req.Subject)
		return reply, cs.record(ctx, userID, req, reply, 0, chat.RedirectSummary(req.Query, kind))
	case chat.KindOffTopic:
		reply := cs.responder.OffTopic(req.Subject, req.Topic)
		return reply, cs.record(ctx, userID, req, reply, 0, chat.RedirectSummary(req.Query, kind))
	case chat.KindFollowUp:
		return cs.followUp(ctx, userID, req)
	default:
		return cs.answer(ctx, userID, req)
	}
}

func (cs *chatService) grade(dbc dbctx.Context, userID uuid.UUID) (string, error) {
	d, err := cs.detailsRepo.GetByUserID(dbc, userID)
	if err != nil {
		return "", fmt.Errorf("load user details: %w", err)
	}
	if d == nil {
		return "", nil
	}
	return d.Class, nil
}

// previousQuery finds the latest stored entry for subject whose query is not
// the current one, scanning the most recent days newest first.
func previousQuery(days []*types.ChatHistory, subject, query string) *types.ChatEntry {
	for _, d := range days {
		entries := d.EntriesFor(subject)
		for i := len(entries) - 1; i >= 0; i-- {
			if !strings.EqualFold(strings.TrimSpace(entries[i].Query), query) {
				e := entries[i]
				return &e
			}
		}
	}
	return nil
}

// previousSummaries returns the stored summaries for subject (and topic when
// set), oldest first.
func previousSummaries(days []*types.ChatHistory, subject, topic string) []string {
	var out []string
	needle := strings.ToLower(topic)
	for i := len(days) - 1; i >= 0; i-- {
		for _, e := range days[i].EntriesFor(subject) {
			if e.Summary == "" {
				continue
			}
			if topic != "" && e.Topic != topic &&
				!strings.Contains(strings.ToLower(e.Query), needle) &&
				!strings.Contains(strings.ToLower(e.Response), needle) {
				continue
			}
			out = append(out, e.Summary)
		}
	}
	return out
}

func (cs *chatService) followUp(ctx context.Context, userID uuid.UUID, req ChatRequest) (string, error) {
	dbc := dbctx.New(ctx)
	recent, err := cs.histories.ListRecent(dbc, userID, contextDays)
	if err != nil {
		return "", fmt.Errorf("load recent chat: %w", err)
	}
	prev := previousQuery(recent, req.Subject, req.Query)
	if prev == nil {
		return cs.responder.FreshStart(req.Subject), nil
	}
	grade, err := cs.grade(dbc, userID)
	if err != nil {
		return "", err
	}
	return cs.complete(ctx, userID, req, []openai.Message{
		{Role: openai.RoleSystem, Content: chat.FollowUpSystemPrompt(grade, req.Subject)},
		{Role: openai.RoleUser, Content: chat.FollowUpUserPrompt(prev.Query, prev.Response, req.Query)},
	})
}

func (cs *chatService) answer(ctx context.Context, userID uuid.UUID, req ChatRequest) (string, error) {
	dbc := dbctx.New(ctx)
	grade, err := cs.grade(dbc, userID)
	if err != nil {
		return "", err
	}
	recent, err := cs.histories.ListRecent(dbc, userID, contextDays)
	if err != nil {
		return "", fmt.Errorf("load recent chat: %w", err)
	}
	prompt := chat.PromptInput{
		Grade:    grade,
		Subject:  req.Subject,
		Topic:    req.Topic,
		Query:    req.Query,
		Previous: previousSummaries(recent, req.Subject, req.Topic),
	}
	return cs.complete(ctx, userID, req, []openai.Message{
		{Role: openai.RoleSystem, Content: chat.TutorSystemPrompt(grade, req.Subject, req.Topic)},
		{Role: openai.RoleUser, Content: chat.TutorUserPrompt(prompt)},
	})
}

func (cs *chatService) complete(ctx context.Context, userID uuid.UUID, req ChatRequest, msgs []openai.Message) (string, error) {
	completion, err := cs.llm.Chat(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if strings.TrimSpace(completion.Content) == "" {
		return "", apierr.BadRequest("empty_completion", "no response received from the language model")
	}
	visible, summary := chat.SplitSummary(completion.Content)
	if err := cs.record(ctx, userID, req, visible, completion.TotalTokens, summary); err != nil {
		return "", err
	}
	return visible, nil
}

func (cs *chatService) record(ctx context.Context, userID uuid.UUID, req ChatRequest, response string, tokens int, summary string) error {
	now := cs.now()
	_, err := cs.histories.AppendEntry(dbctx.New(ctx), userID, dayOf(now), &types.ChatEntry{
		Subject:    req.Subject,
		Topic:      req.Topic,
		Query:      req.Query,
		Response:   response,
		TokensUsed: tokens,
		Summary:    summary,
		CreatedAt:  now,
	})
	if err != nil {
		return fmt.Errorf("save chat entry: %w", err)
	}
	return nil
}

// parseDay accepts a bare date or an RFC 3339 timestamp.
func parseDay(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(domainchat.DayLayout, raw); err == nil {
		return t.Format(domainchat.DayLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return dayOf(t), nil
	}
	return "", apierr.BadRequest("invalid_date", "invalid date %q", raw)
}

func (cs *chatService) DayHistory(ctx context.Context, day string) (*domainchat.DayView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if day == "" {
		day = dayOf(cs.now())
	} else if day, err = parseDay(day); err != nil {
		return nil, err
	}
	h, err := cs.histories.GetDay(dbctx.New(ctx), userID, day)
	if err != nil {
		return nil, fmt.Errorf("load chat day: %w", err)
	}
	if h == nil {
		return nil, apierr.NotFound("history_not_found", "history not found")
	}
	v := h.View()
	return &v, nil
}

func (cs *chatService) AllHistory(ctx context.Context) ([]domainchat.DayView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	days, err := cs.histories.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	out := make([]domainchat.DayView, 0, len(days))
	for _, d := range days {
		out = append(out, d.View())
	}
	return out, nil
}

func (cs *chatService) HeatMap(ctx context.Context, lowerBound, upperBound string) ([]HeatMapDay, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	from, err := parseDay(lowerBound)
	if err != nil {
		return nil, err
	}
	to, err := parseDay(upperBound)
	if err != nil {
		return nil, err
	}
	days, err := cs.histories.ListByUserRange(dbctx.New(ctx), userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list chat range: %w", err)
	}
	out := make([]HeatMapDay, 0, len(days))
	for _, d := range days {
		out = append(out, HeatMapDay{Date: d.Day, Subjects: d.Subjects()})
	}
	return out, nil
}

// Streak is the number of days with any chat activity.
func (cs *chatService) Streak(ctx context.Context) (int, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return 0, err
	}
	days, err := cs.histories.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return 0, fmt.Errorf("list chat history: %w", err)
	}
	return len(days), nil
}

func (cs *chatService) RecentTopics(ctx context.Context) ([]string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	days, err := cs.histories.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	out := []string{}
	seen := map[string]bool{}
	for _, d := range days {
		for i := len(d.Entries) - 1; i >= 0; i-- {
			t := strings.TrimSpace(d.Entries[i].Topic)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func (cs *chatService) TopicHistory(ctx context.Context, topic string) ([]domainchat.DayView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apierr.BadRequest("invalid_request", "topic is required")
	}
	days, err := cs.histories.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	keep := func(e types.ChatEntry) bool { return strings.TrimSpace(e.Topic) == topic }
	out := []domainchat.DayView{}
	for _, d := range days {
		v := d.ViewFiltered(keep)
		if len(v.SubjectWise) > 0 {
			out = append(out, v)
		}
	}
	return out, nil
}
