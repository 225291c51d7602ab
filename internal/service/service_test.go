package service

import (
	"context"
	"testing"
	"time"

	"atelier/internal/database"
	"atelier/internal/models"
	"atelier/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires the real repositories against an in-memory sqlite database
// so service tests exercise the actual SQL.
type testEnv struct {
	db *gorm.DB

	users       repository.UserRepository
	projects    repository.ProjectRepository
	comments    repository.CommentRepository
	follows     repository.FollowRepository
	invitations repository.InvitationRepository
	notifRepo   repository.NotificationRepository
	reports     repository.ReportRepository
	analytics   repository.AnalyticsRepository

	userService    *UserService
	projectService *ProjectService
	commentService *CommentService
	followService  *FollowService
	collabService  *CollabService
	rankingService *RankingService
	analyticsSvc   *AnalyticsService
	moderationSvc  *ModerationService
	notifications  *NotificationService
	permissions    *PermissionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	env := &testEnv{db: db}
	env.users = repository.NewUserRepository(db)
	env.projects = repository.NewProjectRepository(db)
	env.comments = repository.NewCommentRepository(db)
	env.follows = repository.NewFollowRepository(db)
	env.invitations = repository.NewInvitationRepository(db)
	env.notifRepo = repository.NewNotificationRepository(db)
	env.reports = repository.NewReportRepository(db)
	env.analytics = repository.NewAnalyticsRepository(db)

	env.notifications = NewNotificationService(env.notifRepo, nil)
	env.permissions = NewPermissionService(env.follows)
	env.userService = NewUserService(env.users)
	env.projectService = NewProjectService(env.projects, env.users, env.analytics, env.permissions, env.notifications)
	env.commentService = NewCommentService(env.comments, env.projects, env.users, env.permissions, env.notifications, env.isAdmin)
	env.followService = NewFollowService(env.follows, env.users, env.permissions, env.notifications)
	env.collabService = NewCollabService(env.invitations, env.projects, env.users, env.notifications)
	env.rankingService = NewRankingService(env.analytics)
	env.analyticsSvc = NewAnalyticsService(env.analytics, env.projects)
	env.moderationSvc = NewModerationService(env.reports, env.users, env.projects, env.comments, env.notifications)
	return env
}

func (e *testEnv) isAdmin(_ context.Context, userID uint) (bool, error) {
	var user models.User
	if err := e.db.Select("is_admin").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

func (e *testEnv) createUser(t *testing.T, username string, overrides ...func(*models.User)) *models.User {
	t.Helper()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		Username:            username,
		Email:               username + "@example.com",
		Password:            string(hashed),
		ShowFollowers:       true,
		ShowFollowing:       true,
		AllowFollowRequests: true,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	// Create skips zero-valued fields that carry column defaults, so a
	// second Save is needed for overrides that set a default-true flag to
	// false. Create also backfills those struct fields from the column
	// defaults, so the overrides must be re-applied before saving.
	if len(overrides) > 0 {
		for _, override := range overrides {
			override(user)
		}
		if err := e.db.Save(user).Error; err != nil {
			t.Fatalf("save user %s: %v", username, err)
		}
	}
	return user
}

func (e *testEnv) createProject(t *testing.T, owner *models.User, title string, overrides ...func(*models.Project)) *models.Project {
	t.Helper()
	project := &models.Project{
		OwnerID:    owner.ID,
		Title:      title,
		Visibility: models.ProjectVisibilityPublic,
	}
	for _, override := range overrides {
		override(project)
	}
	if err := e.db.Create(project).Error; err != nil {
		t.Fatalf("create project %s: %v", title, err)
	}
	return project
}

// addEngagement writes raw engagement rows so scoring tests control the
// exact counts.
func (e *testEnv) addEngagement(t *testing.T, project *models.Project, views int64, likers []*models.User, commenters []*models.User) {
	t.Helper()
	if views > 0 {
		view := models.ProjectView{
			ProjectID: project.ID,
			Day:       time.Now().UTC().Truncate(24 * time.Hour),
			Views:     views,
		}
		if err := e.db.Create(&view).Error; err != nil {
			t.Fatalf("create views: %v", err)
		}
	}
	for _, liker := range likers {
		like := models.ProjectLike{UserID: liker.ID, ProjectID: project.ID}
		if err := e.db.Create(&like).Error; err != nil {
			t.Fatalf("create like: %v", err)
		}
	}
	for _, commenter := range commenters {
		comment := models.Comment{UserID: commenter.ID, ProjectID: project.ID, Content: "nice"}
		if err := e.db.Create(&comment).Error; err != nil {
			t.Fatalf("create comment: %v", err)
		}
	}
}

func appErrorCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*models.AppError)
	if !ok {
		t.Fatalf("expected *models.AppError, got %T: %v", err, err)
	}
	return appErr.Code
}
