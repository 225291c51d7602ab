package service

import (
	"context"
	"strings"

	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and then the account state. A restricted
// account fails with a typed error even when the password is correct, so no
// token is ever issued for it.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := accountStateError(user); err != nil {
		return nil, err
	}
	return user, nil
}

// accountStateError maps moderation flags to the login-blocking error.
// Ban outranks suspension, deletion outranks both.
func accountStateError(user *models.User) error {
	switch {
	case user.IsDeleted:
		return models.NewAccountStateError("ACCOUNT_DELETED", user.DeletedReason)
	case user.IsBanned:
		return models.NewAccountStateError("ACCOUNT_BANNED", user.BannedReason)
	case user.IsSuspended:
		return models.NewAccountStateError("ACCOUNT_SUSPENDED", user.SuspendedReason)
	}
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("User not found")
	}
	return user, nil
}

// ProfileUpdate carries the optional profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Website  *string `json:"website"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	fields := map[string]any{}
	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["username"] = username
	}
	if update.Bio != nil {
		if len(*update.Bio) > 500 {
			return nil, models.NewValidationError("Bio must be at most 500 characters")
		}
		fields["bio"] = *update.Bio
	}
	if update.Website != nil {
		fields["website"] = strings.TrimSpace(*update.Website)
	}
	if len(fields) == 0 {
		return nil, models.NewValidationError("No fields to update")
	}
	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// PrivacyUpdate carries the optional privacy toggles. Nil means unchanged.
type PrivacyUpdate struct {
	IsPrivate           *bool `json:"is_private"`
	ShowFollowers       *bool `json:"show_followers"`
	ShowFollowing       *bool `json:"show_following"`
	AllowFollowRequests *bool `json:"allow_follow_requests"`
}

func (s *UserService) UpdatePrivacy(ctx context.Context, userID uint, update PrivacyUpdate) (*models.User, error) {
	fields := map[string]any{}
	if update.IsPrivate != nil {
		fields["is_private"] = *update.IsPrivate
	}
	if update.ShowFollowers != nil {
		fields["show_followers"] = *update.ShowFollowers
	}
	if update.ShowFollowing != nil {
		fields["show_following"] = *update.ShowFollowing
	}
	if update.AllowFollowRequests != nil {
		fields["allow_follow_requests"] = *update.AllowFollowRequests
	}
	if len(fields) == 0 {
		return nil, models.NewValidationError("No fields to update")
	}
	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, avatarURL string) error {
	return s.userRepo.UpdateFields(ctx, userID, map[string]any{"avatar": avatarURL})
}

func (s *UserService) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.Search(ctx, query, limit)
}
