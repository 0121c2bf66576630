package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/domain/feedback"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/apierr"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

const anonymousName = "Anonymous User"

type FeedbackInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
	Subject     *string
	Attachments []string
}

type FeedbackStatusUpdate struct {
	Status        *types.FeedbackStatus
	AdminResponse *string
}

type FeedbackService interface {
	Create(ctx context.Context, in FeedbackInput) (*types.Feedback, error)
	ListMine(ctx context.Context) ([]*types.Feedback, error)
	GetMine(ctx context.Context, id uuid.UUID) (*types.Feedback, error)

	List(ctx context.Context, filter repos.FeedbackFilter) ([]*types.Feedback, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Feedback, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, in FeedbackStatusUpdate) (*types.Feedback, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type feedbackService struct {
	db           *gorm.DB
	log          *logger.Logger
	feedbackRepo repos.FeedbackRepo
	detailsRepo  repos.UserDetailsRepo
}

func NewFeedbackService(db *gorm.DB, log *logger.Logger, feedbackRepo repos.FeedbackRepo, detailsRepo repos.UserDetailsRepo) FeedbackService {
	return &feedbackService{
		db:           db,
		log:          log.With("service", "FeedbackService"),
		feedbackRepo: feedbackRepo,
		detailsRepo:  detailsRepo,
	}
}

func feedbackNotFound(id uuid.UUID) error {
	return apierr.NotFound("feedback_not_found", "feedback with ID %s not found", id)
}

func (fs *feedbackService) Create(ctx context.Context, in FeedbackInput) (*types.Feedback, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" || desc == "" {
		return nil, apierr.BadRequest("invalid_request", "title and description are required")
	}
	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	switch priority {
	case "", feedback.PriorityLow, feedback.PriorityMedium, feedback.PriorityHigh:
	default:
		return nil, apierr.BadRequest("invalid_priority", "priority must be low, medium or high")
	}

	dbc := dbctx.New(ctx)
	details, err := fs.detailsRepo.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user details: %w", err)
	}
	if details == nil {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}

	fb := &types.Feedback{
		Title:       title,
		Description: desc,
		UserID:      userID,
		UserName:    anonymousName,
		Status:      feedback.StatusPending,
		Priority:    feedback.PriorityMedium,
		Category:    feedback.DefaultCategory,
		Subject:     in.Subject,
		Attachments: in.Attachments,
	}
	if name := strings.TrimSpace(details.Name); name != "" {
		fb.UserName = name
	}
	// an explicit priority means the ticket was triaged by the user
	if priority != "" {
		fb.Status = feedback.StatusOpen
		fb.Priority = priority
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		fb.Category = c
	}

	created, err := fs.feedbackRepo.Create(dbc, fb)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	fs.log.Ctx(ctx).Info("Feedback submitted", "user_id", userID, "feedback_id", created.ID, "priority", created.Priority)
	return created, nil
}

func (fs *feedbackService) ListMine(ctx context.Context) ([]*types.Feedback, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return fs.List(ctx, repos.FeedbackFilter{UserID: &userID})
}

func (fs *feedbackService) GetMine(ctx context.Context, id uuid.UUID) (*types.Feedback, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	fb, err := fs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if fb.UserID != userID {
		return nil, apierr.Forbidden("forbidden", "you do not have permission to access this feedback")
	}
	return fb, nil
}

func (fs *feedbackService) List(ctx context.Context, filter repos.FeedbackFilter) ([]*types.Feedback, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apierr.BadRequest("invalid_status", "unknown feedback status %q", *filter.Status)
	}
	out, err := fs.feedbackRepo.List(dbctx.New(ctx), filter)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return out, nil
}

func (fs *feedbackService) Get(ctx context.Context, id uuid.UUID) (*types.Feedback, error) {
	fb, err := fs.feedbackRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	if fb == nil {
		return nil, feedbackNotFound(id)
	}
	return fb, nil
}

func (fs *feedbackService) UpdateStatus(ctx context.Context, id uuid.UUID, in FeedbackStatusUpdate) (*types.Feedback, error) {
	updates := map[string]interface{}{}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apierr.BadRequest("invalid_status", "unknown feedback status %q", *in.Status)
		}
		updates["status"] = *in.Status
	}
	if in.AdminResponse != nil {
		updates["admin_response"] = *in.AdminResponse
	}
	if len(updates) == 0 {
		return nil, apierr.BadRequest("invalid_request", "nothing to update")
	}

	var out *types.Feedback
	err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := fs.feedbackRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load feedback: %w", err)
		}
		if existing == nil {
			return feedbackNotFound(id)
		}
		if err := fs.feedbackRepo.UpdateFields(dbc, id, updates); err != nil {
			return fmt.Errorf("update feedback: %w", err)
		}
		out, err = fs.feedbackRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (fs *feedbackService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := fs.feedbackRepo.Delete(dbctx.New(ctx), id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if !deleted {
		return feedbackNotFound(id)
	}
	return nil
}
