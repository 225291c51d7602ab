// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"atelier/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var tagPool = []string{
	"painting", "sculpture", "photography", "illustration", "ceramics",
	"woodworking", "printmaking", "textiles", "digital", "generative",
	"watercolor", "charcoal", "collage", "calligraphy", "street-art",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashedPassword),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Website:  gofakeit.URL(),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateProject constructs and persists a sample project with tags and a
// small image gallery.
func (f *Factory) CreateProject(owner *models.User, overrides ...func(*models.Project)) (*models.Project, error) {
	project := &models.Project{
		OwnerID:     owner.ID,
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		Visibility:  models.ProjectVisibilityPublic,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	project.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(project)
	}

	if err := f.db.Create(project).Error; err != nil {
		return nil, err
	}

	for _, tag := range f.pickTags(1 + f.r.Intn(3)) {
		row := models.ProjectTag{ProjectID: project.ID, Tag: tag}
		if err := f.db.Create(&row).Error; err != nil {
			return nil, err
		}
		project.Tags = append(project.Tags, tag)
	}

	imageCount := 1 + f.r.Intn(4)
	for i := 0; i < imageCount; i++ {
		img := models.ProjectImage{
			ProjectID: project.ID,
			URL:       fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
			Position:  i,
		}
		if err := f.db.Create(&img).Error; err != nil {
			return nil, err
		}
	}

	return project, nil
}

// CreateComment persists a comment by the user on the project.
func (f *Factory) CreateComment(user *models.User, project *models.Project) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   gofakeit.Sentence(8 + f.r.Intn(12)),
		UserID:    user.ID,
		ProjectID: project.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// LikeProject records a like, ignoring duplicates.
func (f *Factory) LikeProject(user *models.User, project *models.Project) error {
	like := models.ProjectLike{UserID: user.ID, ProjectID: project.ID}
	err := f.db.Create(&like).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

// Follow records an accepted follow edge, ignoring duplicates.
func (f *Factory) Follow(requester, target *models.User) error {
	follow := models.Follow{
		RequesterID: requester.ID,
		TargetID:    target.ID,
		Status:      models.FollowStatusAccepted,
	}
	err := f.db.Create(&follow).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

// RecordViews adds a daily view row for the project with a random count.
func (f *Factory) RecordViews(project *models.Project, daysAgo int) error {
	day := time.Now().UTC().AddDate(0, 0, -daysAgo).Truncate(24 * time.Hour)
	view := models.ProjectView{
		ProjectID: project.ID,
		Day:       day,
		Views:     int64(1 + f.r.Intn(200)),
	}
	err := f.db.Create(&view).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

func (f *Factory) pickTags(n int) []string {
	picked := make(map[string]struct{}, n)
	tags := make([]string, 0, n)
	for len(tags) < n {
		tag := tagPool[f.r.Intn(len(tagPool))]
		if _, ok := picked[tag]; ok {
			continue
		}
		picked[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
