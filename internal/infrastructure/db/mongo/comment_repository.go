package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

const collectionComments = "comments"

type CommentRepository struct {
	col *mongo.Collection
}

var _ ports.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments)}
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	BlogID    primitive.ObjectID `bson:"blog_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Text      string             `bson:"text"`
	Approved  bool               `bson:"approved"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        d.ID.Hex(),
		BlogID:    d.BlogID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Text:      d.Text,
		Approved:  d.Approved,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (r *CommentRepository) Insert(ctx context.Context, c *domain.Comment) error {
	blogID, err := objectID(c.BlogID, domain.ErrBlogNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, commentDoc{
		BlogID:    blogID,
		Name:      c.Name,
		Email:     c.Email,
		Text:      c.Text,
		Approved:  c.Approved,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (r *CommentRepository) ListByBlog(ctx context.Context, blogID string, approvedOnly bool) ([]*domain.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(blogID)
	if err != nil {
		return []*domain.Comment{}, nil
	}

	filter := bson.M{"blog_id": oid}
	if approvedOnly {
		filter["approved"] = true
	}
	return r.find(ctx, filter, 0)
}

func (r *CommentRepository) ListPending(ctx context.Context, limit int) ([]*domain.Comment, error) {
	return r.find(ctx, bson.M{"approved": false}, limit)
}

func (r *CommentRepository) find(ctx context.Context, filter bson.M, limit int) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer cur.Close(ctx)

	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}

	out := make([]*domain.Comment, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *CommentRepository) CountPending(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"approved": false})
	if err != nil {
		return 0, fmt.Errorf("count pending comments: %w", err)
	}
	return n, nil
}

func (r *CommentRepository) Approve(ctx context.Context, id string) (*domain.Comment, error) {
	oid, err := objectID(id, domain.ErrCommentNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"approved": true, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc commentDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("approve comment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrCommentNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByBlog(ctx context.Context, blogID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(blogID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"blog_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete blog comments: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "blog_id", Value: 1}, {Key: "approved", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "approved", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure comment indexes: %w", err)
	}
	return nil
}
