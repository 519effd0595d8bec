package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/nayonf/inkline/backend/internal/common"
	"github.com/nayonf/inkline/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArticleRepository defines the interface for article data operations. The
// counter mutations are atomic single-document updates; callers gate them
// (dedup cache, like relation) but never compose read-modify-write themselves.
type ArticleRepository interface {
	GetArticleByID(ctx context.Context, id string) (*models.Article, error)
	IncrementViewsCount(ctx context.Context, articleID string) (*models.Article, error)
	IncrementLikesCount(ctx context.Context, articleID string) (*models.Article, error)
	DecrementLikesCount(ctx context.Context, articleID string) (*models.Article, error)
	IncrementCommentsCount(ctx context.Context, articleID string) error
}

// MongoArticleRepository implements ArticleRepository for MongoDB
type MongoArticleRepository struct {
	collection *mongo.Collection
}

// NewMongoArticleRepository creates a new MongoArticleRepository
func NewMongoArticleRepository(db *mongo.Database) *MongoArticleRepository {
	return &MongoArticleRepository{collection: db.Collection("articles")}
}

// GetArticleByID retrieves an article by ID from MongoDB
func (r *MongoArticleRepository) GetArticleByID(ctx context.Context, id string) (*models.Article, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid article ID %q", common.ErrNotFound, id)
	}

	var article models.Article
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&article)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

// IncrementViewsCount atomically increments the views counter and returns the
// updated article.
func (r *MongoArticleRepository) IncrementViewsCount(ctx context.Context, articleID string) (*models.Article, error) {
	return r.findAndUpdate(ctx, articleID, bson.M{}, bson.M{"$inc": bson.M{"views_count": 1}})
}

// IncrementLikesCount atomically increments the likes counter and returns the
// updated article.
func (r *MongoArticleRepository) IncrementLikesCount(ctx context.Context, articleID string) (*models.Article, error) {
	return r.findAndUpdate(ctx, articleID, bson.M{}, bson.M{"$inc": bson.M{"likes_count": 1}})
}

// DecrementLikesCount atomically decrements the likes counter, floored at 0,
// and returns the current article.
func (r *MongoArticleRepository) DecrementLikesCount(ctx context.Context, articleID string) (*models.Article, error) {
	article, err := r.findAndUpdate(ctx, articleID,
		bson.M{"likes_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"likes_count": -1}})
	if errors.Is(err, common.ErrNotFound) {
		// Counter already at the floor; distinguish that from a missing article.
		return r.GetArticleByID(ctx, articleID)
	}
	return article, err
}

// IncrementCommentsCount increments the comments count of an article
func (r *MongoArticleRepository) IncrementCommentsCount(ctx context.Context, articleID string) error {
	objID, err := primitive.ObjectIDFromHex(articleID)
	if err != nil {
		return fmt.Errorf("%w: invalid article ID %q", common.ErrNotFound, articleID)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"comments_count": 1}})
	return err
}

func (r *MongoArticleRepository) findAndUpdate(ctx context.Context, articleID string, extraFilter, update bson.M) (*models.Article, error) {
	objID, err := primitive.ObjectIDFromHex(articleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid article ID %q", common.ErrNotFound, articleID)
	}

	filter := bson.M{"_id": objID}
	for k, v := range extraFilter {
		filter[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var article models.Article
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&article)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}
