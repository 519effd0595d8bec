package handlers

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/nayonf/inkline/backend/internal/common"
	"github.com/nayonf/inkline/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[string]*models.Article
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: make(map[string]*models.Article)}
}

func (r *fakeArticleRepo) addArticle(authorID uint, title string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	r.articles[id.Hex()] = &models.Article{ID: id, AuthorID: authorID, Title: title}
	return id.Hex()
}

func (r *fakeArticleRepo) GetArticleByID(_ context.Context, id string) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *article
	return &cp, nil
}

func (r *fakeArticleRepo) IncrementViewsCount(_ context.Context, id string) (*models.Article, error) {
	return r.bump(id, func(a *models.Article) { a.ViewsCount++ })
}

func (r *fakeArticleRepo) IncrementLikesCount(_ context.Context, id string) (*models.Article, error) {
	return r.bump(id, func(a *models.Article) { a.LikesCount++ })
}

func (r *fakeArticleRepo) DecrementLikesCount(_ context.Context, id string) (*models.Article, error) {
	return r.bump(id, func(a *models.Article) {
		if a.LikesCount > 0 {
			a.LikesCount--
		}
	})
}

func (r *fakeArticleRepo) IncrementCommentsCount(_ context.Context, id string) error {
	_, err := r.bump(id, func(a *models.Article) { a.CommentsCount++ })
	return err
}

func (r *fakeArticleRepo) bump(id string, mutate func(*models.Article)) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	mutate(article)
	cp := *article
	return &cp, nil
}

type fakeCommentRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{nextID: 1, rows: make(map[uint]*models.Comment)}
}

func (r *fakeCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = r.nextID
	r.nextID++
	cp := *comment
	r.rows[cp.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *comment
	return &cp, nil
}

func (r *fakeCommentRepo) GetCommentsByArticleID(_ context.Context, articleID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, comment := range r.rows {
		if comment.ArticleID == articleID {
			out = append(out, *comment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeNotificationRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1, rows: make(map[uint]*models.Notification)}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextID
	r.nextID++
	cp := *n
	r.rows[cp.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *fakeNotificationRepo) GetByRecipientID(_ context.Context, recipientID uint, _, _ int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, row := range r.rows {
		if row.RecipientID == recipientID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		row.IsRead = true
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for _, row := range r.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			row.IsRead = true
			changed++
		}
	}
	return changed, nil
}

type fakeLikeRepo struct {
	mu        sync.Mutex
	relations map[string]bool
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{relations: make(map[string]bool)}
}

func likeKey(articleID string, userID uint) string {
	return articleID + "|" + strconv.FormatUint(uint64(userID), 10)
}

func (r *fakeLikeRepo) CreateLike(_ context.Context, like *models.Like) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := likeKey(like.ArticleID, like.UserID)
	if r.relations[key] {
		return false, nil
	}
	r.relations[key] = true
	return true, nil
}

func (r *fakeLikeRepo) DeleteLike(_ context.Context, articleID string, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := likeKey(articleID, userID)
	if !r.relations[key] {
		return false, nil
	}
	delete(r.relations, key)
	return true, nil
}

func (r *fakeLikeRepo) HasUserLiked(_ context.Context, articleID string, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.relations[likeKey(articleID, userID)], nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return user, nil
}
