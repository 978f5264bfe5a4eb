package db

import (
	"context"
	"errors"
	"testing"

	"github.com/dresss/backend/internal/models"
)

func createTestPost(t *testing.T, repo *Repository, accountID int64, description string) *models.Post {
	t.Helper()
	posts := NewPostRepository(repo)
	post := &models.Post{
		AccountID:   accountID,
		Description: description,
		PhotoRefs:   []string{"photos/" + description + ".jpg"},
	}
	if err := posts.Create(context.Background(), post, nil, nil); err != nil {
		t.Fatalf("create post %q: %v", description, err)
	}
	return post
}

func TestPostCreateWithArticlesAndTags(t *testing.T) {
	repo := newTestRepository(t)
	posts := NewPostRepository(repo)
	ctx := context.Background()

	account := createTestAccount(t, repo, "marie")

	post := &models.Post{
		AccountID:   account.ID,
		Description: "summer outfit",
		PhotoRefs:   []string{"photos/1.jpg", "photos/2.jpg"},
	}
	articles := []models.Article{
		{Title: "linen shirt", Price: 39.9, Link: "https://shop.example/shirt"},
		{Title: "straw hat", Price: 15},
	}
	if err := posts.Create(ctx, post, articles, []string{"Summer", "summer", "  Linen "}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.ID == 0 {
		t.Fatal("post ID not assigned")
	}

	stored, err := posts.ListArticles(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("articles = %d, want 2", len(stored))
	}
	for _, a := range stored {
		if a.PostID != post.ID || a.AccountID != account.ID {
			t.Errorf("article ownership = post %d account %d, want post %d account %d",
				a.PostID, a.AccountID, post.ID, account.ID)
		}
	}

	tags, err := posts.GetTags(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetTags: %v", err)
	}
	// lowercased, trimmed, de-duplicated
	if len(tags) != 2 {
		t.Errorf("tags = %v, want [linen summer]", tags)
	}

	owner, err := NewAccountRepository(repo).GetByID(ctx, account.ID)
	if err != nil || owner == nil {
		t.Fatalf("reload account: %v", err)
	}
	if owner.PostCount != 1 {
		t.Errorf("PostCount = %d, want 1", owner.PostCount)
	}
}

func TestPostCreateValidation(t *testing.T) {
	repo := newTestRepository(t)
	posts := NewPostRepository(repo)
	ctx := context.Background()

	account := createTestAccount(t, repo, "jean")

	tests := []struct {
		name     string
		post     *models.Post
		articles []models.Article
	}{
		{
			name: "empty description",
			post: &models.Post{AccountID: account.ID, PhotoRefs: []string{"p.jpg"}},
		},
		{
			name: "no photos",
			post: &models.Post{AccountID: account.ID, Description: "look"},
		},
		{
			name:     "article without title",
			post:     &models.Post{AccountID: account.ID, Description: "look", PhotoRefs: []string{"p.jpg"}},
			articles: []models.Article{{Price: 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := posts.Create(ctx, tt.post, tt.articles, nil)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Create = %v, want ValidationError", err)
			}
		})
	}

	// nothing persisted by the rejected creates
	count, err := posts.CountAll(ctx)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 0 {
		t.Errorf("CountAll = %d, want 0", count)
	}
}

func TestPostListAllKeysetPagination(t *testing.T) {
	repo := newTestRepository(t)
	posts := NewPostRepository(repo)
	ctx := context.Background()

	account := createTestAccount(t, repo, "luc")
	var ids []int64
	for _, d := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, createTestPost(t, repo, account.ID, d).ID)
	}

	page1, err := posts.ListAll(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListAll page 1: %v", err)
	}
	if len(page1) != 2 || page1[0].ID != ids[0] || page1[1].ID != ids[1] {
		t.Fatalf("page 1 = %v, want first two posts in creation order", postIDs(page1))
	}

	page2, err := posts.ListAll(ctx, page1[1].ID, 2)
	if err != nil {
		t.Fatalf("ListAll page 2: %v", err)
	}
	if len(page2) != 2 || page2[0].ID != ids[2] {
		t.Fatalf("page 2 = %v, want posts after %d", postIDs(page2), page1[1].ID)
	}

	rest, err := posts.ListAll(ctx, page2[1].ID, 0)
	if err != nil {
		t.Fatalf("ListAll rest: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != ids[4] {
		t.Fatalf("rest = %v, want final post", postIDs(rest))
	}
}

func TestPostUpdatePartial(t *testing.T) {
	repo := newTestRepository(t)
	posts := NewPostRepository(repo)
	ctx := context.Background()

	account := createTestAccount(t, repo, "zoe")
	post := createTestPost(t, repo, account.ID, "original")

	newDesc := "edited"
	updated, err := posts.Update(ctx, post.ID, PostUpdate{Description: &newDesc})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Description != "edited" {
		t.Errorf("Description = %q, want edited", updated.Description)
	}
	if len(updated.PhotoRefs) != 1 {
		t.Errorf("PhotoRefs changed by partial update: %v", updated.PhotoRefs)
	}
	if !updated.EditedAt.After(updated.CreatedAt) {
		t.Error("EditedAt not advanced on update")
	}

	_, err = posts.Update(ctx, 9999, PostUpdate{Description: &newDesc})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}
}

func TestPostDeleteCascades(t *testing.T) {
	repo := newTestRepository(t)
	posts := NewPostRepository(repo)
	views := NewViewRepository(repo)
	engage := NewEngagementRepository(repo)
	savesRepo := NewSaveRepository(repo)
	ctx := context.Background()

	owner := createTestAccount(t, repo, "marie")
	viewer := createTestAccount(t, repo, "jean")

	post := &models.Post{AccountID: owner.ID, Description: "look", PhotoRefs: []string{"p.jpg"}}
	if err := posts.Create(ctx, post, []models.Article{{Title: "bag", Price: 20}}, []string{"bags"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	articleID := post.Articles[0].ID

	if _, err := views.MarkViewed(ctx, viewer.ID, post.ID); err != nil {
		t.Fatalf("MarkViewed: %v", err)
	}
	if _, err := engage.CreateLikeRecord(ctx, viewer.ID, post.ID); err != nil {
		t.Fatalf("CreateLikeRecord: %v", err)
	}
	if _, err := savesRepo.Create(ctx, viewer.ID, post.ID, models.ItemTypePost); err != nil {
		t.Fatalf("save post: %v", err)
	}
	if _, err := savesRepo.Create(ctx, viewer.ID, articleID, models.ItemTypeArticle); err != nil {
		t.Fatalf("save article: %v", err)
	}

	if err := posts.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got, _ := posts.GetByID(ctx, post.ID); got != nil {
		t.Error("post still present after delete")
	}
	if _, err := posts.ListArticles(ctx, post.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("ListArticles after delete = %v, want ErrNotFound", err)
	}
	if ids, _ := views.ListViewedPostIDs(ctx, viewer.ID); len(ids) != 0 {
		t.Errorf("view records remain: %v", ids)
	}
	if liked, _ := engage.HasLiked(ctx, viewer.ID, post.ID); liked {
		t.Error("like record remains after delete")
	}
	if saved, _ := savesRepo.ListByAccount(ctx, viewer.ID); len(saved) != 0 {
		t.Errorf("saved items remain: %v", saved)
	}
	if tags, _ := posts.GetTags(ctx, post.ID); len(tags) != 0 {
		t.Errorf("tags remain: %v", tags)
	}

	if err := posts.Delete(ctx, post.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestListArticlesEmptyVersusAbsent(t *testing.T) {
	repo := newTestRepository(t)
	posts := NewPostRepository(repo)
	ctx := context.Background()

	account := createTestAccount(t, repo, "luc")
	post := createTestPost(t, repo, account.ID, "no articles")

	articles, err := posts.ListArticles(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListArticles existing post: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("articles = %v, want empty list", articles)
	}

	_, err = posts.ListArticles(ctx, 9999)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("ListArticles missing post = %v, want ErrNotFound", err)
	}
}

func postIDs(posts []models.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
