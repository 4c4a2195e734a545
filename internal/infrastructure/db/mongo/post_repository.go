package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
)

const collectionPosts = "posts"

var _ ports.PostRepository = (*PostRepository)(nil)

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(collectionPosts)}
}

type tagRef struct {
	Slug string `bson:"slug"`
	Name string `bson:"name"`
}

type postDocument struct {
	ID          string     `bson:"_id"`
	Slug        string     `bson:"slug"`
	Title       string     `bson:"title"`
	Excerpt     *string    `bson:"excerpt,omitempty"`
	BodyMD      string     `bson:"body_md"`
	BodyHTML    string     `bson:"body_html"`
	AuthorID    string     `bson:"author_id"`
	Status      string     `bson:"status"`
	Visibility  string     `bson:"visibility"`
	Tags        []tagRef   `bson:"tags"`
	PublishedAt *time.Time `bson:"published_at,omitempty"`
	// ActivityAt is published_at, or updated_at for unpublished posts.
	ActivityAt time.Time `bson:"activity_at"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func toDocument(p *domain.StoredPost) postDocument {
	doc := postDocument{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		BodyMD:      p.BodyMD,
		BodyHTML:    p.BodyHTML,
		AuthorID:    p.AuthorID,
		Status:      string(p.Status),
		Visibility:  string(p.Visibility),
		Tags:        make([]tagRef, 0, len(p.Tags)),
		PublishedAt: p.PublishedAt,
		ActivityAt:  p.UpdatedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.PublishedAt != nil {
		doc.ActivityAt = *p.PublishedAt
	}
	for _, name := range p.Tags {
		doc.Tags = append(doc.Tags, tagRef{Slug: domain.Slugify(name), Name: name})
	}
	return doc
}

func (d postDocument) toDomain() domain.StoredPost {
	var p domain.StoredPost
	p.ID = d.ID
	p.Slug = d.Slug
	p.Title = d.Title
	p.Excerpt = d.Excerpt
	p.BodyMD = d.BodyMD
	p.BodyHTML = d.BodyHTML
	p.AuthorID = d.AuthorID
	p.Status = domain.Status(d.Status)
	p.Visibility = domain.Visibility(d.Visibility)
	if d.PublishedAt != nil {
		t := d.PublishedAt.UTC()
		p.PublishedAt = &t
	}
	p.Tags = make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		p.Tags = append(p.Tags, t.Name)
	}
	p.CreatedAt = d.CreatedAt.UTC()
	p.UpdatedAt = d.UpdatedAt.UTC()
	return p
}

func (r *PostRepository) Create(ctx context.Context, p *domain.StoredPost) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDocument(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) Update(ctx context.Context, p *domain.StoredPost) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, toDocument(p))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("replace post: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.StoredPost, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*domain.StoredPost, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *PostRepository) findOne(ctx context.Context, filter bson.M) (*domain.StoredPost, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc postDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

func (r *PostRepository) List(ctx context.Context, f ports.PostFilter) ([]domain.StoredPost, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(listSort(f.Sort)).SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.col.Find(ctx, listFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	out := make([]domain.StoredPost, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

type tagCount struct {
	Slug  string `bson:"_id"`
	Name  string `bson:"name"`
	Count int    `bson:"count"`
}

func (r *PostRepository) Tags(ctx context.Context) ([]domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags.slug"},
			{Key: "name", Value: bson.D{{Key: "$first", Value: "$tags.name"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate tags: %w", err)
	}
	defer cur.Close(ctx)

	var rows []tagCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	tags := make([]domain.Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, domain.Tag{ID: domain.TagID(row.Slug), Slug: row.Slug, Name: row.Name, Count: row.Count})
	}
	return tags, nil
}

// EnsureIndexes creates the indexes the post queries rely on.
func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "visibility", Value: 1}, {Key: "published_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "activity_at", Value: -1}}},
		{Keys: bson.D{{Key: "tags.slug", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func listFilter(f ports.PostFilter) bson.M {
	filter := bson.M{}
	if f.AuthorID != "" {
		filter["author_id"] = f.AuthorID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Visibility != "" {
		filter["visibility"] = string(f.Visibility)
	}

	var and []bson.M
	if f.Tag != "" {
		and = append(and, bson.M{"$or": []bson.M{{"tags.slug": f.Tag}, {"tags.name": f.Tag}}})
	}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		and = append(and, bson.M{"$or": []bson.M{{"title": re}, {"body_md": re}}})
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}

func listSort(s ports.PostSort) bson.D {
	if s == ports.SortRecentActivity {
		return bson.D{{Key: "activity_at", Value: -1}, {Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "published_at", Value: -1}, {Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}
}
