package service

import (
	"context"
	"testing"
	"time"

	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopularityScoreWeights(t *testing.T) {
	// 1 like and 2 comments are worth 40 points on top of the raw views.
	views := int64(7)
	assert.Equal(t, views+40, models.PopularityScore(views, 1, 2))
	assert.Equal(t, int64(0), models.PopularityScore(0, 0, 0))
	assert.Equal(t, int64(35), models.PopularityScore(0, 2, 1))
}

func TestGlobalRankingOrdersByScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	// alice: 5 views + 2 likes = 25. bob: 100 views = 100. carol: 1 comment = 15.
	env.addEngagement(t, env.createProject(t, alice, "Mural"), 5, []*models.User{bob, carol}, nil)
	env.addEngagement(t, env.createProject(t, bob, "Etchings"), 100, nil, nil)
	env.addEngagement(t, env.createProject(t, carol, "Vases"), 0, nil, []*models.User{alice})

	page, err := env.rankingService.Global(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 3)

	assert.Equal(t, bob.ID, page.Entries[0].UserID)
	assert.Equal(t, int64(100), page.Entries[0].PopularityScore)
	assert.Equal(t, alice.ID, page.Entries[1].UserID)
	assert.Equal(t, int64(25), page.Entries[1].PopularityScore)
	assert.Equal(t, carol.ID, page.Entries[2].UserID)
	assert.Equal(t, int64(15), page.Entries[2].PopularityScore)

	// ranks are 1-based and continue across pages
	for i, entry := range page.Entries {
		assert.Equal(t, i+1, entry.Rank)
	}
}

func TestGlobalRankingTieBreaksOnLowerID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createUser(t, "first")
	second := env.createUser(t, "second")

	env.addEngagement(t, env.createProject(t, first, "One"), 50, nil, nil)
	env.addEngagement(t, env.createProject(t, second, "Two"), 50, nil, nil)

	page, err := env.rankingService.Global(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, first.ID, page.Entries[0].UserID)
	assert.Equal(t, second.ID, page.Entries[1].UserID)
}

func TestGlobalRankingPagesAreDisjoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var all []uint
	for i := 0; i < 8; i++ {
		user := env.createUser(t, "painter"+string(rune('a'+i)))
		env.addEngagement(t, env.createProject(t, user, "Work"), int64(100-i*10), nil, nil)
		all = append(all, user.ID)
	}

	pageOne, err := env.rankingService.Global(ctx, 0, 5)
	require.NoError(t, err)
	pageTwo, err := env.rankingService.Global(ctx, 5, 5)
	require.NoError(t, err)

	require.Len(t, pageOne.Entries, 5)
	require.Len(t, pageTwo.Entries, 3)

	seen := make(map[uint]bool)
	rank := 0
	for _, entry := range append(pageOne.Entries, pageTwo.Entries...) {
		assert.False(t, seen[entry.UserID], "user %d appeared twice", entry.UserID)
		seen[entry.UserID] = true
		assert.Equal(t, rank+1, entry.Rank)
		rank = entry.Rank
	}
	assert.Len(t, seen, len(all))
}

func TestRankingExcludesPrivateAndModeratedOwners(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visible := env.createUser(t, "visible")
	private := env.createUser(t, "private", func(u *models.User) { u.IsPrivate = true })
	banned := env.createUser(t, "banned", func(u *models.User) { u.IsBanned = true })

	env.addEngagement(t, env.createProject(t, visible, "Shown"), 10, nil, nil)
	env.addEngagement(t, env.createProject(t, private, "Hidden"), 500, nil, nil)
	env.addEngagement(t, env.createProject(t, banned, "Gone"), 500, nil, nil)

	page, err := env.rankingService.Global(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, visible.ID, page.Entries[0].UserID)

	// private projects never count either
	hiddenProject := env.createProject(t, visible, "Secret", func(p *models.Project) {
		p.Visibility = models.ProjectVisibilityPrivate
	})
	env.addEngagement(t, hiddenProject, 1000, nil, nil)

	page, err = env.rankingService.Global(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, int64(10), page.Entries[0].PopularityScore)
}

func TestMyPositionForPrivateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	leader := env.createUser(t, "leader")
	private := env.createUser(t, "recluse", func(u *models.User) { u.IsPrivate = true })
	trailer := env.createUser(t, "trailer")

	env.addEngagement(t, env.createProject(t, leader, "Top"), 100, nil, nil)
	env.addEngagement(t, env.createProject(t, private, "Mid"), 50, nil, nil)
	env.addEngagement(t, env.createProject(t, trailer, "Low"), 10, nil, nil)

	// The private user is invisible on the board but still has a position.
	board, err := env.rankingService.Global(ctx, 0, 10)
	require.NoError(t, err)
	for _, entry := range board.Entries {
		assert.NotEqual(t, private.ID, entry.UserID)
	}

	pos, err := env.rankingService.MyPosition(ctx, private.ID)
	require.NoError(t, err)
	assert.True(t, pos.Ranked)
	assert.Equal(t, 2, pos.Rank)

	pos, err = env.rankingService.MyPosition(ctx, trailer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, pos.Rank)
}

func TestTagRankingAggregatesAcrossProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "ceramicist")
	glazed := env.createProject(t, user, "Glazed")
	raw := env.createProject(t, user, "Raw")
	env.addEngagement(t, glazed, 30, nil, nil)
	env.addEngagement(t, raw, 20, nil, nil)

	for _, row := range []models.ProjectTag{
		{ProjectID: glazed.ID, Tag: "ceramics"},
		{ProjectID: raw.ID, Tag: "ceramics"},
		{ProjectID: raw.ID, Tag: "sculpture"},
	} {
		require.NoError(t, env.db.Create(&row).Error)
	}

	page, err := env.rankingService.Tags(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "ceramics", page.Entries[0].Tag)
	assert.Equal(t, int64(2), page.Entries[0].Projects)
	assert.Equal(t, int64(50), page.Entries[0].PopularityScore)
	assert.Equal(t, "sculpture", page.Entries[1].Tag)
	assert.Equal(t, int64(20), page.Entries[1].PopularityScore)
}

func TestWeeklyRankingIgnoresOldEngagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fresh := env.createUser(t, "fresh")
	stale := env.createUser(t, "stale")

	env.addEngagement(t, env.createProject(t, fresh, "New"), 10, nil, nil)

	// stale's views happened a month ago
	old := env.createProject(t, stale, "Old")
	view := models.ProjectView{
		ProjectID: old.ID,
		Day:       time.Now().UTC().AddDate(0, 0, -30).Truncate(24 * time.Hour),
		Views:     1000,
	}
	require.NoError(t, env.db.Create(&view).Error)

	page, err := env.rankingService.Weekly(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, fresh.ID, page.Entries[0].UserID)
	assert.Equal(t, int64(10), page.Entries[0].PopularityScore)
	assert.Equal(t, int64(0), page.Entries[1].PopularityScore)

	// the same engagement still counts all-time
	global, err := env.rankingService.Global(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, global.Entries, 2)
	assert.Equal(t, stale.ID, global.Entries[0].UserID)
}
