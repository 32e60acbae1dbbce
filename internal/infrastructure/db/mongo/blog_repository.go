package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

const collectionBlogs = "blogs"

type BlogRepository struct {
	col *mongo.Collection
}

var _ ports.BlogRepository = (*BlogRepository)(nil)

func NewBlogRepository(db *mongo.Database) *BlogRepository {
	return &BlogRepository{col: db.Collection(collectionBlogs)}
}

type blogDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Content    string             `bson:"content"`
	Slug       string             `bson:"slug"`
	Category   string             `bson:"category"`
	Tags       []string           `bson:"tags"`
	Images     []string           `bson:"images"`
	AuthorID   string             `bson:"author_id"`
	AuthorRole string             `bson:"author_role"`
	Excerpt    string             `bson:"excerpt"`
	Published  bool               `bson:"published"`
	Views      int64              `bson:"views"`
	Likes      int64              `bson:"likes"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func toBlogDoc(b *domain.Blog) blogDoc {
	return blogDoc{
		Title:      b.Title,
		Content:    b.Content,
		Slug:       b.Slug,
		Category:   b.Category,
		Tags:       nonNil(b.Tags),
		Images:     nonNil(b.Images),
		AuthorID:   b.AuthorID,
		AuthorRole: string(b.AuthorRole),
		Excerpt:    b.Excerpt,
		Published:  b.Published,
		Views:      b.Views,
		Likes:      b.Likes,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func (d *blogDoc) toDomain() *domain.Blog {
	return &domain.Blog{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Content:    d.Content,
		Slug:       d.Slug,
		Category:   d.Category,
		Tags:       d.Tags,
		Images:     d.Images,
		AuthorID:   d.AuthorID,
		AuthorRole: domain.Role(d.AuthorRole),
		Excerpt:    d.Excerpt,
		Published:  d.Published,
		Views:      d.Views,
		Likes:      d.Likes,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Insert writes a new post and sets b.ID. The only unique index on the
// collection is the slug, so any duplicate key means the slug was taken.
func (r *BlogRepository) Insert(ctx context.Context, b *domain.Blog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toBlogDoc(b))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("insert blog: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid.Hex()
	}
	return nil
}

func (r *BlogRepository) FindByID(ctx context.Context, id string) (*domain.Blog, error) {
	oid, err := objectID(id, domain.ErrBlogNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc blogDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrBlogNotFound
		}
		return nil, fmt.Errorf("find blog: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BlogRepository) FindBySlugAndCountView(ctx context.Context, slug string, includeDrafts bool) (*domain.Blog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"slug": slug}
	if !includeDrafts {
		filter["published"] = true
	}
	update := bson.M{"$inc": bson.M{"views": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc blogDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrBlogNotFound
		}
		return nil, fmt.Errorf("find blog by slug: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns one page of posts, newest first, and the total match count.
func (r *BlogRepository) List(ctx context.Context, f ports.BlogFilter) ([]*domain.Blog, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildBlogFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	defer cur.Close(ctx)

	var docs []blogDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode blogs: %w", err)
	}

	items := make([]*domain.Blog, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toDomain())
	}
	return items, total, nil
}

func buildBlogFilter(f ports.BlogFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.Published != nil {
		filter["published"] = *f.Published
	}
	if f.AuthorID != "" {
		filter["author_id"] = f.AuthorID
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"excerpt": pattern},
		}
	}
	return filter
}

// Update overwrites the mutable fields of an existing post.
func (r *BlogRepository) Update(ctx context.Context, b *domain.Blog) error {
	oid, err := objectID(b.ID, domain.ErrBlogNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":      b.Title,
		"content":    b.Content,
		"slug":       b.Slug,
		"category":   b.Category,
		"tags":       nonNil(b.Tags),
		"images":     nonNil(b.Images),
		"excerpt":    b.Excerpt,
		"published":  b.Published,
		"updated_at": b.UpdatedAt,
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("update blog: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBlogNotFound
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrBlogNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBlogNotFound
	}
	return nil
}

func (r *BlogRepository) IncrementLikes(ctx context.Context, id string) (int64, error) {
	oid, err := objectID(id, domain.ErrBlogNotFound)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var doc struct {
		Likes int64 `bson:"likes"`
	}
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"likes": 1}}, opts).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return 0, domain.ErrBlogNotFound
		}
		return 0, fmt.Errorf("like blog: %w", err)
	}
	return doc.Likes, nil
}

func (r *BlogRepository) ExistsSlug(ctx context.Context, slug, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"slug": slug}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates the unique slug index and the listing indexes.
func (r *BlogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "published", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure blog indexes: %w", err)
	}
	return nil
}
