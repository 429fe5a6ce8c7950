// Command smoke wires the full stack against a live database and Redis and
// walks one engagement cycle end to end. Useful for checking an environment
// before pointing real traffic at it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/imagehost"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
	"ripple/internal/service"
)

func main() {
	keep := flag.Bool("keep", false, "Keep the rows created by the smoke run")
	flag.Parse()

	if err := run(*keep); err != nil {
		log.Fatal(err)
	}
}

func run(keep bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "ripple-smoke",
		Environment:  cfg.Env,
		Enabled:      true,
		Exporter:     cfg.TraceExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdown(context.Background())

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	client := cache.NewClient(cfg.RedisURL)
	store := cache.NewStore(client, time.Duration(cfg.CacheTTLMinutes)*time.Minute)

	var images imagehost.Host
	if cfg.ImageHostURL != "" {
		images = imagehost.NewHTTPHost(cfg.ImageHostURL, cfg.ImageHostKey)
	}

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	posts := service.NewPostService(postRepo, commentRepo, images)
	comments := service.NewCommentService(commentRepo, postRepo)
	feed := service.NewFeedService(posts, comments, store)

	ctx := context.Background()

	user := models.User{
		FirstName: "Smoke",
		LastName:  "Check",
		Email:     fmt.Sprintf("smoke-%d@example.com", time.Now().UnixNano()),
		Password:  "unused",
		Role:      "user",
		Active:    true,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create smoke user: %w", err)
	}

	resp := feed.CreatePost(ctx, service.CreatePostInput{
		UserID:   user.ID,
		Content:  "Smoke check post",
		Category: models.CategoryTech,
	})
	dump("create post", resp)
	if resp.Failed {
		return fmt.Errorf("create post failed: %s", resp.Message)
	}
	post := resp.Data.(*models.Post)

	dump("vote up", feed.Vote(ctx, post.ID, models.VoteUp))

	resp = feed.AddComment(ctx, service.CreateCommentInput{
		UserID:  user.ID,
		PostID:  post.ID,
		Content: "Smoke check comment",
	})
	dump("add comment", resp)
	if !resp.Failed {
		comment := resp.Data.(*models.Comment)
		dump("like comment", feed.React(ctx, comment.ID, user.ID, models.ReactionLike))

		listed, err := comments.ListComments(ctx, post.ID)
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		fmt.Printf("--- list comments: %d on post %d\n", len(listed), post.ID)
	}

	dump("feed miss", feed.ListFeed(ctx, service.FeedQuery{AuthorID: &user.ID}))
	dump("feed hit", feed.ListFeed(ctx, service.FeedQuery{AuthorID: &user.ID}))
	dump("post detail", feed.GetPostDetail(ctx, post.ID))

	if !keep {
		dump("cleanup", feed.DeletePost(ctx, service.DeletePostInput{UserID: user.ID, PostID: post.ID}))
		db.Delete(&user)
	}

	return nil
}

func dump(step string, resp *models.Response) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	fmt.Printf("--- %s (status %d, failed=%t)\n%s\n", step, resp.StatusCode, resp.Failed, resp.Message)
	_ = enc.Encode(resp.Data)
}
