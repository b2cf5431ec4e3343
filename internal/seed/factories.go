package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"sellerhood/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions tune factory behavior.
type SeedOptions struct {
	// DryRun builds entities with synthetic IDs without touching the DB.
	DryRun bool
	// SkipBcrypt stores the plain password. Dev fast mode only.
	SkipBcrypt bool
	// MaxDays spreads post timestamps over this many days back (default 90).
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, rng: rng, nextID: 1000}
}

// CreateUser constructs and persists a user with a linked profile. All seed
// users share the password "password123".
func (f *Factory) CreateUser(overrides ...func(*models.User, *models.Profile)) (*models.User, error) {
	user := &models.User{
		Email: strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d@example.com", gofakeit.Number(100, 999)),
	}
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashed)
	}

	nickname := nicknamePool[f.rng.Intn(len(nicknamePool))]
	profile := &models.Profile{
		Nickname:         fmt.Sprintf("%s%d", nickname, f.rng.Intn(100)),
		AvatarURL:        fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		SellerExperience: experiencePool[f.rng.Intn(len(experiencePool))],
		OnlinePlatforms:  f.samplePlatforms(),
		Expectations:     expectationPool[f.rng.Intn(len(expectationPool))],
	}

	for _, override := range overrides {
		override(user, profile)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		profile.UserID = user.ID
		user.Profile = profile
		log.Printf("[dry-run] CreateUser: %s (%s)", profile.Nickname, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	profile.UserID = user.ID
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// CreatePost constructs and persists a post in the given category with a
// realistic created_at spread.
func (f *Factory) CreatePost(author *models.User, category string, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:       f.title(category),
		Content:     f.paragraph(1 + f.rng.Intn(4)),
		Category:    category,
		AuthorID:    author.ID,
		IsAnonymous: category == models.CategoryWorry && f.rng.Float32() < 0.5,
		IsPublished: true,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	minsBack := f.rng.Intn(24 * 60)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: category=%s author=%d title=%q", post.Category, post.AuthorID, post.Title)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on the post and bumps its counter, the
// same way the live write path does.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:     commentPool[f.rng.Intn(len(commentPool))],
		PostID:      post.ID,
		AuthorID:    author.ID,
		IsAnonymous: post.IsAnonymous && f.rng.Float32() < 0.5,
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post and bumps the counter.
// Duplicate likes are skipped silently.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Like{}).
			Where("user_id = ? AND post_id = ?", user.ID, post.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
}

func (f *Factory) samplePlatforms() []string {
	n := 1 + f.rng.Intn(3)
	picked := make([]string, 0, n)
	for _, idx := range f.rng.Perm(len(platformPool))[:n] {
		picked = append(picked, platformPool[idx])
	}
	return picked
}

func (f *Factory) title(category string) string {
	templates := titleTemplates[category]
	if len(templates) == 0 {
		templates = titleTemplates[models.CategorySellerChat]
	}
	tpl := templates[f.rng.Intn(len(templates))]
	switch strings.Count(tpl, "%") {
	case 0:
		return tpl
	default:
		if strings.Contains(tpl, "%d") {
			return fmt.Sprintf(tpl, f.rng.Intn(300)+1)
		}
		return fmt.Sprintf(tpl, platformPool[f.rng.Intn(len(platformPool))])
	}
}

func (f *Factory) paragraph(sentences int) string {
	var sb strings.Builder
	for i := 0; i < sentences; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(contentSentences[f.rng.Intn(len(contentSentences))])
	}
	return sb.String()
}
