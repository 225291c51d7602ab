package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"atelier/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumProjects int
	ShouldClean bool
}

// Seeder populates the database with a realistic social mesh of users,
// projects, follows and engagement.
type Seeder struct {
	db *gorm.DB
	f  *Factory
	r  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Seeder{db: db, f: NewFactory(db), r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll truncates every seeded table.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE project_views, comment_likes, comments, project_likes, saved_projects,
		collab_invitations, project_collaborators, project_tags, project_images, projects,
		notifications, reports, user_blocks, follows, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// Seed populates the database with test data
func (s *Seeder) Seed(opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d projects...", opts.NumUsers, opts.NumProjects)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	projects, err := s.createProjects(users, opts.NumProjects)
	if err != nil {
		return fmt.Errorf("failed to create projects: %w", err)
	}
	log.Printf("✓ %d projects created", len(projects))

	if err := s.weaveFollowMesh(users); err != nil {
		return fmt.Errorf("failed to create follow mesh: %w", err)
	}
	log.Println("✓ follow mesh woven")

	if err := s.addEngagement(users, projects); err != nil {
		return fmt.Errorf("failed to add engagement: %w", err)
	}
	log.Println("✓ likes, comments and views added")

	if err := s.addCollaborations(users, projects); err != nil {
		return fmt.Errorf("failed to add collaborations: %w", err)
	}
	log.Println("✓ collaborators added")

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func (s *Seeder) createUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include fixed accounts so a fresh environment has known logins.
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	fixed := []models.User{
		{Username: "admin", Email: "admin@example.com", Password: string(hashedPassword), Bio: "Keeper of the keys.", IsAdmin: true},
		{Username: "demo", Email: "demo@example.com", Password: string(hashedPassword), Bio: "Demo account."},
		{Username: "hermit", Email: "hermit@example.com", Password: string(hashedPassword), Bio: "Invite only.", IsPrivate: true},
	}
	for i := range fixed {
		if err := s.db.Create(&fixed[i]).Error; err == nil {
			users = append(users, &fixed[i])
		}
	}

	for i := len(users); i < count; i++ {
		overrides := []func(*models.User){}
		// roughly one in five accounts is private
		if s.r.Intn(5) == 0 {
			overrides = append(overrides, func(u *models.User) { u.IsPrivate = true })
		}
		user, err := s.f.CreateUser(overrides...)
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

func (s *Seeder) createProjects(users []*models.User, count int) ([]*models.Project, error) {
	projects := make([]*models.Project, 0, count)
	for i := 0; i < count; i++ {
		owner := users[s.r.Intn(len(users))]
		overrides := []func(*models.Project){}
		if s.r.Intn(6) == 0 {
			overrides = append(overrides, func(p *models.Project) { p.Visibility = models.ProjectVisibilityPrivate })
		}
		project, err := s.f.CreateProject(owner, overrides...)
		if err != nil {
			log.Printf("Failed to create project: %v", err)
			continue
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// weaveFollowMesh gives every user a handful of accepted follows. Private
// targets also receive a few pending requests so the request inbox is not
// empty in demos.
func (s *Seeder) weaveFollowMesh(users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	for _, user := range users {
		edges := 2 + s.r.Intn(6)
		for i := 0; i < edges; i++ {
			target := users[s.r.Intn(len(users))]
			if target.ID == user.ID {
				continue
			}
			if err := s.f.Follow(user, target); err != nil {
				return err
			}
		}
	}

	for _, target := range users {
		if !target.IsPrivate {
			continue
		}
		requester := users[s.r.Intn(len(users))]
		if requester.ID == target.ID {
			continue
		}
		pending := models.Follow{RequesterID: requester.ID, TargetID: target.ID, Status: models.FollowStatusPending}
		if err := s.db.Create(&pending).Error; err != nil && !isDuplicate(err) {
			return err
		}
	}
	return nil
}

func (s *Seeder) addEngagement(users []*models.User, projects []*models.Project) error {
	for _, project := range projects {
		likes := s.r.Intn(8)
		for i := 0; i < likes; i++ {
			if err := s.f.LikeProject(users[s.r.Intn(len(users))], project); err != nil {
				return err
			}
		}

		comments := s.r.Intn(4)
		for i := 0; i < comments; i++ {
			if _, err := s.f.CreateComment(users[s.r.Intn(len(users))], project); err != nil {
				return err
			}
		}

		// view history over the last two weeks so the weekly window has data
		for day := 0; day < 14; day++ {
			if s.r.Intn(3) == 0 {
				continue
			}
			if err := s.f.RecordViews(project, day); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) addCollaborations(users []*models.User, projects []*models.Project) error {
	for _, project := range projects {
		if s.r.Intn(4) != 0 {
			continue
		}
		collaborator := users[s.r.Intn(len(users))]
		if collaborator.ID == project.OwnerID {
			continue
		}
		role := models.CollabRoleViewer
		if s.r.Intn(2) == 0 {
			role = models.CollabRoleEditor
		}
		row := models.ProjectCollaborator{ProjectID: project.ID, UserID: collaborator.ID, Role: role}
		if err := s.db.Create(&row).Error; err != nil && !isDuplicate(err) {
			return err
		}
	}
	return nil
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
