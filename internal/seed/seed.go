// Package seed populates a development database with plausible campus data.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"campusboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "password123"

var schools = []models.School{
	{Name: "State University", Slug: "state-u"},
	{Name: "Tech Institute", Slug: "tech"},
	{Name: "Riverside College", Slug: "riverside"},
	{Name: "Northern Polytechnic", Slug: "northern-poly"},
}

type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll truncates every seeded table, children first.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.AdminLog{},
		&models.Notification{},
		&models.GlobalReviewLog{},
		&models.ReviewLog{},
		&models.Post{},
		&models.SchoolFeatureToggle{},
		&models.IGTemplate{},
		&models.User{},
		&models.School{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(table).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", table, err)
		}
	}
	log.Println("cleared existing data")
	return nil
}

// Schools inserts the built-in campus list and a default feature toggle row
// for each, plus one IG template toggles can reference.
func (s *Seeder) Schools() ([]models.School, error) {
	template := models.IGTemplate{Name: "standard card", Layout: "{{.Title}}\n\n{{.Content}}"}
	if err := s.db.Create(&template).Error; err != nil {
		return nil, err
	}

	out := make([]models.School, 0, len(schools))
	for _, school := range schools {
		if err := s.db.Create(&school).Error; err != nil {
			return nil, err
		}
		toggle := models.DefaultToggle(school.ID)
		toggle.EnableDiscord = rand.Intn(2) == 0
		if toggle.EnableDiscord {
			url := gofakeit.URL()
			toggle.DiscordWebhookURL = &url
		}
		if err := s.db.Create(toggle).Error; err != nil {
			return nil, err
		}
		out = append(out, school)
	}
	log.Printf("seeded %d schools", len(out))
	return out, nil
}

// Users creates n accounts spread across the schools, with a sprinkling of
// moderation roles: each school gets a reviewer, and the platform gets a few
// global reviewers, one admin, and one dev.
func (s *Seeder) Users(n int, schoolList []models.School) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		school := schoolList[i%len(schoolList)]
		user := models.User{
			Username:     gofakeit.Username(),
			Email:        fmt.Sprintf("user%d@%s.example.com", i+1, school.Slug),
			PasswordHash: string(hash),
			Role:         roleFor(i, len(schoolList)),
			SchoolID:     &school.ID,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))
	return users, nil
}

// roleFor hands out one reviewer per school first, then the platform roles,
// and plain users for the rest.
func roleFor(i, schoolCount int) models.Role {
	switch {
	case i < schoolCount:
		return models.RoleReviewer
	case i < schoolCount+3:
		return models.RoleGlobalReviewer
	case i == schoolCount+3:
		return models.RoleAdmin
	case i == schoolCount+4:
		return models.RoleDev
	}
	return models.RoleUser
}

// Posts creates n posts in a realistic mix of states: mostly pending and
// approved, some rejected with a recorded reviewer, a few global.
func (s *Seeder) Posts(n int, users []models.User, schoolList []models.School) ([]models.Post, error) {
	reviewers := make(map[uint][]models.User)
	for _, u := range users {
		if u.Role == models.RoleReviewer && u.SchoolID != nil {
			reviewers[*u.SchoolID] = append(reviewers[*u.SchoolID], u)
		}
	}

	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		schoolID := schoolList[rand.Intn(len(schoolList))].ID
		if author.SchoolID != nil {
			schoolID = *author.SchoolID
		}

		post := models.Post{
			Title:       gofakeit.Sentence(6),
			Content:     gofakeit.Paragraph(1, 3, 12, " "),
			IsAnonymous: rand.Intn(3) == 0,
			SchoolID:    schoolID,
			IsGlobal:    rand.Intn(5) == 0,
			Status:      models.StatusPending,
			ViewCount:   rand.Intn(500),
			LikeCount:   rand.Intn(50),
		}
		if !post.IsAnonymous {
			post.AuthorID = &author.ID
		}

		// Two thirds of posts have already been through review.
		if school := reviewers[schoolID]; len(school) > 0 && rand.Intn(3) != 0 {
			reviewer := school[rand.Intn(len(school))]
			reviewedAt := time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour)
			post.ReviewedBy = &reviewer.ID
			post.ReviewedAt = &reviewedAt
			if rand.Intn(4) == 0 {
				reason := gofakeit.Sentence(5)
				post.Status = models.StatusRejected
				post.IsSensitive = true
				post.SensitiveReason = &reason
			} else {
				comment := gofakeit.Sentence(4)
				post.Status = models.StatusApproved
				post.ReviewComment = &comment
			}
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		if post.Status != models.StatusPending {
			action := models.ActionApprove
			if post.Status == models.StatusRejected {
				action = models.ActionReject
			}
			if err := s.db.Create(&models.ReviewLog{
				PostID:     post.ID,
				ReviewerID: post.ReviewedBy,
				Action:     action,
				Reason:     gofakeit.Sentence(4),
			}).Error; err != nil {
				return nil, err
			}
		}
		posts = append(posts, post)
	}
	log.Printf("seeded %d posts", len(posts))
	return posts, nil
}

// Votes adds cross-school votes to pending global posts so consensus flows
// have data to work with. It stops short of the auto-approval threshold.
func (s *Seeder) Votes(posts []models.Post, users []models.User) error {
	var voters []models.User
	for _, u := range users {
		if u.Role == models.RoleGlobalReviewer {
			voters = append(voters, u)
		}
	}
	if len(voters) == 0 {
		return nil
	}

	count := 0
	for _, post := range posts {
		if !post.IsGlobal || post.Status != models.StatusPending {
			continue
		}
		for i := range voters {
			if rand.Intn(2) == 0 {
				continue
			}
			approve := rand.Intn(4) != 0
			if err := s.db.Create(&models.GlobalReviewLog{
				PostID: post.ID,
				UserID: &voters[i].ID,
				Action: models.GlobalActionVote,
				Vote:   &approve,
				Reason: gofakeit.Sentence(4),
			}).Error; err != nil {
				return err
			}
			count++
		}
	}
	log.Printf("seeded %d cross-school votes", count)
	return nil
}
