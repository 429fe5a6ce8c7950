// Package seed populates a development database with plausible users, posts,
// comments, reactions and votes. Reactions and votes go through the
// repositories so the persisted counters stay consistent with membership.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var categories = []models.Category{
	models.CategoryTech,
	models.CategoryHealth,
	models.CategoryLifestyle,
	models.CategoryEducation,
	models.CategoryEntertainment,
	models.CategorySports,
}

// Seed fills the database with test data. Existing rows are cleared first.
func Seed(db *gorm.DB) error {
	log.Println("Starting database seeding...")

	if err := ClearAll(db); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	users, err := createUsers(db, 15)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	posts, err := createPosts(db, users)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("Created %d posts", len(posts))

	comments, err := createComments(db, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("Created %d comments", len(comments))

	reactions, err := addReactions(db, users, comments)
	if err != nil {
		return fmt.Errorf("failed to add reactions: %w", err)
	}
	log.Printf("Added %d comment reactions", reactions)

	votes, err := addVotes(db, users, posts)
	if err != nil {
		return fmt.Errorf("failed to add votes: %w", err)
	}
	log.Printf("Added %d post votes", votes)

	log.Println("Database seeding completed")
	return nil
}

// ClearAll deletes all seeded rows, children first.
func ClearAll(db *gorm.DB) error {
	for _, table := range []string{"comment_reactions", "comments", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, n int) ([]models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     gofakeit.Email(),
			Password:  string(hashed),
			Image:     fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%d", i),
			Role:      "user",
			Active:    true,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []models.User) ([]models.Post, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	posts := make([]models.Post, 0)
	for _, user := range users {
		numPosts := r.Intn(3) + 2
		for i := 0; i < numPosts; i++ {
			post := models.Post{
				UserID:   user.ID,
				Content:  gofakeit.Paragraph(1, 3, 12, " "),
				Category: categories[r.Intn(len(categories))],
			}
			if r.Float32() < 0.3 {
				post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%d/800/600", r.Intn(1000))
			}
			if err := db.Create(&post).Error; err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func createComments(db *gorm.DB, users []models.User, posts []models.Post) ([]models.Comment, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	all := make([]models.Comment, 0)
	for _, post := range posts {
		numComments := r.Intn(4)
		topLevel := make([]models.Comment, 0, numComments)
		for i := 0; i < numComments; i++ {
			comment := models.Comment{
				PostID:  post.ID,
				UserID:  users[r.Intn(len(users))].ID,
				Content: gofakeit.Sentence(10),
			}
			if err := db.Create(&comment).Error; err != nil {
				return nil, err
			}
			topLevel = append(topLevel, comment)
			all = append(all, comment)
		}

		// Some top-level comments get replies.
		for _, parent := range topLevel {
			if r.Float32() > 0.4 {
				continue
			}
			parentID := parent.ID
			reply := models.Comment{
				PostID:   post.ID,
				UserID:   users[r.Intn(len(users))].ID,
				ParentID: &parentID,
				Content:  gofakeit.Sentence(8),
			}
			if err := db.Create(&reply).Error; err != nil {
				return nil, err
			}
			all = append(all, reply)
		}
	}
	return all, nil
}

func addReactions(db *gorm.DB, users []models.User, comments []models.Comment) (int, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	repo := repository.NewCommentRepository(db)
	ctx := context.Background()

	count := 0
	for _, comment := range comments {
		numReactions := r.Intn(len(users)/3 + 1)
		for i := 0; i < numReactions; i++ {
			kind := models.ReactionLike
			if r.Float32() < 0.25 {
				kind = models.ReactionDislike
			}
			if _, err := repo.React(ctx, comment.ID, users[r.Intn(len(users))].ID, kind); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func addVotes(db *gorm.DB, users []models.User, posts []models.Post) (int, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	count := 0
	for _, post := range posts {
		numVotes := r.Intn(len(users))
		for i := 0; i < numVotes; i++ {
			vote := models.VoteUp
			if r.Float32() < 0.3 {
				vote = models.VoteDown
			}
			if _, err := repo.Vote(ctx, post.ID, vote); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
