package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/apierr"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

// DetailsInput carries profile fields. Nil pointers are left unchanged on update.
type DetailsInput struct {
	Name         *string
	DOB          *string
	Phone        *string
	SchoolName   *string
	Class        *string
	Subjects     []string
	ProfileImage *string
}

type UserUpdate struct {
	Email    *string
	Password *string
	Role     *string
}

type UserService interface {
	CreateDetails(ctx context.Context, in DetailsInput) (*types.UserDetails, error)
	GetDetails(ctx context.Context) (*types.UserDetails, error)
	UpdateDetails(ctx context.Context, in DetailsInput) (*types.UserDetails, error)

	ListUsers(ctx context.Context) ([]*types.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, in UserUpdate) (*types.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	detailsRepo repos.UserDetailsRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, detailsRepo repos.UserDetailsRepo) UserService {
	return &userService{
		db:          db,
		log:         log.With("service", "UserService"),
		userRepo:    userRepo,
		detailsRepo: detailsRepo,
	}
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func (us *userService) CreateDetails(ctx context.Context, in DetailsInput) (*types.UserDetails, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	for field, v := range map[string]*string{
		"name": in.Name, "dob": in.DOB, "phoneno": in.Phone, "schoolName": in.SchoolName, "class": in.Class,
	} {
		if trimmed(v) == "" {
			return nil, apierr.BadRequest("invalid_request", "%s is required", field)
		}
	}

	var created *types.UserDetails
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		owner, err := us.userRepo.GetByID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if owner == nil {
			return apierr.NotFound("user_not_found", "user with ID %s not found", userID)
		}
		existing, err := us.detailsRepo.GetByUserID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load user details: %w", err)
		}
		if existing != nil {
			return apierr.Conflict("details_exist", "user details already exist")
		}
		created, err = us.detailsRepo.Create(dbc, &types.UserDetails{
			UserID:       userID,
			Name:         trimmed(in.Name),
			DOB:          trimmed(in.DOB),
			Phone:        trimmed(in.Phone),
			SchoolName:   trimmed(in.SchoolName),
			Class:        trimmed(in.Class),
			Subjects:     in.Subjects,
			ProfileImage: trimmed(in.ProfileImage),
		})
		if err != nil {
			return fmt.Errorf("create user details: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (us *userService) GetDetails(ctx context.Context) (*types.UserDetails, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	details, err := us.detailsRepo.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("load user details: %w", err)
	}
	if details == nil {
		return nil, apierr.NotFound("details_not_found", "user details not found for user with ID %s", userID)
	}
	return details, nil
}

func (us *userService) UpdateDetails(ctx context.Context, in DetailsInput) (*types.UserDetails, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	set("name", in.Name)
	set("dob", in.DOB)
	set("phone", in.Phone)
	set("school_name", in.SchoolName)
	set("class", in.Class)
	set("profile_image", in.ProfileImage)

	var out *types.UserDetails
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := us.detailsRepo.GetByUserID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load user details: %w", err)
		}
		if existing == nil {
			return apierr.NotFound("details_not_found", "user details not found for user with ID %s", userID)
		}
		if in.Subjects != nil {
			existing.Subjects = in.Subjects
			updates["subjects"] = existing.Subjects
		}
		if err := us.detailsRepo.UpdateFields(dbc, userID, updates); err != nil {
			return fmt.Errorf("update user details: %w", err)
		}
		out, err = us.detailsRepo.GetByUserID(dbc, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (us *userService) ListUsers(ctx context.Context) ([]*types.User, error) {
	users, err := us.userRepo.ListWithDetails(dbctx.New(ctx))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (us *userService) UpdateUser(ctx context.Context, userID uuid.UUID, in UserUpdate) (*types.User, error) {
	updates := map[string]interface{}{}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, apierr.BadRequest("invalid_email", "a valid email is required")
		}
		updates["email"] = email
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		hashed, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}
	if in.Role != nil {
		if !ValidRole(*in.Role) {
			return nil, apierr.BadRequest("invalid_role", "unknown role %q", *in.Role)
		}
		updates["role"] = *in.Role
	}

	var out *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := us.userRepo.GetByID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if existing == nil {
			return apierr.NotFound("user_not_found", "user with ID %s not found", userID)
		}
		if email, ok := updates["email"].(string); ok && !strings.EqualFold(email, existing.Email) {
			taken, err := us.userRepo.EmailExists(dbc, email)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if taken {
				return apierr.Conflict("user_exists", "email already in use")
			}
		}
		err = us.userRepo.UpdateFields(dbc, userID, updates)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierr.Conflict("user_exists", "email already in use")
		}
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		out, err = us.userRepo.GetByID(dbc, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	us.log.Ctx(ctx).Info("User updated", "user_id", userID)
	return out, nil
}

// DeleteUser removes the account and its profile together.
func (us *userService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := us.detailsRepo.DeleteByUserID(dbc, userID); err != nil {
			return fmt.Errorf("delete user details: %w", err)
		}
		deleted, err := us.userRepo.Delete(dbc, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if !deleted {
			return apierr.NotFound("user_not_found", "user with ID %s not found", userID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	us.log.Ctx(ctx).Info("User deleted", "user_id", userID)
	return nil
}
