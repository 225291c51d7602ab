package seed

import (
	"testing"

	"atelier/internal/database"
	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

func TestSeedPopulatesDemoWorld(t *testing.T) {
	db := setupTestDB(t)
	seeder := NewSeeder(db)

	// ShouldClean stays false: TRUNCATE CASCADE is postgres-only.
	require.NoError(t, seeder.Seed(Options{NumUsers: 12, NumProjects: 30}))

	var users, projects, follows, likes, comments int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Project{}).Count(&projects).Error)
	require.NoError(t, db.Model(&models.Follow{}).Count(&follows).Error)
	require.NoError(t, db.Model(&models.ProjectLike{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)

	assert.EqualValues(t, 12, users)
	assert.EqualValues(t, 30, projects)
	assert.Positive(t, follows)
	assert.Positive(t, likes)
	assert.Positive(t, comments)

	// Fixed accounts exist with their documented roles.
	var admin, demo, hermit models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	require.NoError(t, db.Where("username = ?", "demo").First(&demo).Error)
	require.NoError(t, db.Where("username = ?", "hermit").First(&hermit).Error)
	assert.True(t, admin.IsAdmin)
	assert.False(t, demo.IsAdmin)
	assert.True(t, hermit.IsPrivate)
}

func TestFactoryCreateUserAndProject(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db)

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotEmpty(t, user.Username)
	assert.NotEmpty(t, user.Email)
	assert.NotEqual(t, "password123", user.Password, "password is stored hashed")

	project, err := f.CreateProject(user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, project.OwnerID)
	assert.NotEmpty(t, project.Title)

	var images int64
	require.NoError(t, db.Model(&models.ProjectImage{}).Where("project_id = ?", project.ID).Count(&images).Error)
	assert.Positive(t, images)
}

func TestFactoryLikeIgnoresDuplicates(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db)

	user, err := f.CreateUser()
	require.NoError(t, err)
	project, err := f.CreateProject(user)
	require.NoError(t, err)

	require.NoError(t, f.LikeProject(user, project))
	require.NoError(t, f.LikeProject(user, project))

	var likes int64
	require.NoError(t, db.Model(&models.ProjectLike{}).Count(&likes).Error)
	assert.EqualValues(t, 1, likes)
}
