// Package mongo implements the repository contracts on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webgenie/internal/model"
	"webgenie/internal/repository"
)

const (
	projectsCollection  = "projects"
	usersCollection     = "users"
	templatesCollection = "templates"
)

// Store is a MongoDB-backed repository.Store.
type Store struct {
	client    *mongo.Client
	projects  *mongo.Collection
	users     *mongo.Collection
	templates *mongo.Collection
}

var _ repository.Store = (*Store)(nil)

// Connect dials uri, verifies the connection and ensures indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	s := NewStore(client, database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := s.seedTemplates(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func NewStore(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:    client,
		projects:  db.Collection(projectsCollection),
		users:     db.Collection(usersCollection),
		templates: db.Collection(templatesCollection),
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating users email index: %w", err)
	}

	_, err = s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("creating projects user index: %w", err)
	}
	return nil
}

// seedTemplates inserts the built-in templates that are missing and leaves
// existing documents untouched.
func (s *Store) seedTemplates(ctx context.Context) error {
	for _, t := range repository.SeedTemplates() {
		_, err := s.templates.UpdateOne(ctx,
			bson.M{"_id": t.ID},
			bson.M{"$setOnInsert": t},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("seeding template %s: %w", t.Name, err)
		}
	}
	return nil
}

func (s *Store) Projects() repository.ProjectRepo {
	return &projectRepo{collection: s.projects}
}

func (s *Store) Users() repository.UserRepo {
	return &userRepo{collection: s.users}
}

func (s *Store) Templates() repository.TemplateRepo {
	return &templateRepo{collection: s.templates}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type projectRepo struct {
	collection *mongo.Collection
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("creating project %s: %w", p.ID, repository.ErrDuplicate)
		}
		return fmt.Errorf("creating project: %w", err)
	}
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("finding project: %w", err)
	}
	return &p, nil
}

func (r *projectRepo) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []model.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("decoding projects: %w", err)
	}
	return projects, nil
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":      p.Name,
		"htmlCode":  p.HTMLCode,
		"cssCode":   p.CSSCode,
		"jsCode":    p.JSCode,
		"isPublic":  p.IsPublic,
		"updatedAt": p.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type userRepo struct {
	collection *mongo.Collection
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("creating user %s: %w", u.Email, repository.ErrDuplicate)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	if err := r.collection.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &u, nil
}

type templateRepo struct {
	collection *mongo.Collection
}

func (r *templateRepo) List(ctx context.Context) ([]model.Template, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer cursor.Close(ctx)

	templates := []model.Template{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("decoding templates: %w", err)
	}
	return templates, nil
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*model.Template, error) {
	var t model.Template
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("finding template: %w", err)
	}
	return &t, nil
}
