package mongo

import (
	"context"
	"errors"
	"fmt"

	"familytree/internal/domain"
	"familytree/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MemberStore implements repositories.MemberRepository
type MemberStore struct {
	c *mongo.Collection
}

// EnsureIndexes creates the parent lookup and ordering indexes.
func (s *MemberStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Dependents lookup for delete
		{
			Keys:    bson.D{{Key: "parent_id", Value: 1}},
			Options: options.Index().SetName("idx_member_parent"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_member_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// List returns members ordered by creation time.
func (s *MemberStore) List(ctx context.Context) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageError("list members", err)
	}
	defer cur.Close(ctx)

	members := []models.Member{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, storageError("decode members", err)
	}
	return members, nil
}

// GetByID retrieves a member by its ID.
func (s *MemberStore) GetByID(ctx context.Context, id string) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
		}
		return nil, storageError("get member", err)
	}
	return &m, nil
}

// Create inserts a new member. The parent is checked again after the insert;
// Delete mirrors this by recounting children after it removes a member, so a
// concurrent create and delete cannot both succeed.
func (s *MemberStore) Create(ctx context.Context, member *models.Member) error {
	if member.ParentID != nil {
		if err := s.requireMember(ctx, *member.ParentID); err != nil {
			return err
		}
	}

	if _, err := s.c.InsertOne(ctx, member); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("member %s: %w", member.ID, domain.ErrConflict)
		}
		return storageError("create member", err)
	}

	if member.ParentID != nil {
		if err := s.requireMember(ctx, *member.ParentID); err != nil {
			if _, derr := s.c.DeleteOne(ctx, bson.M{"_id": member.ID}); derr != nil {
				return storageError("undo create member", derr)
			}
			return err
		}
	}
	return nil
}

// requireMember reports a missing parent as a validation error
func (s *MemberStore) requireMember(ctx context.Context, id string) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return storageError("find parent", err)
	}
	if n == 0 {
		return &domain.ValidationError{Message: fmt.Sprintf("parent %s does not exist", id)}
	}
	return nil
}

// Update modifies a member's name and image.
func (s *MemberStore) Update(ctx context.Context, member *models.Member) error {
	set := bson.M{
		"name":       member.Name,
		"image_url":  member.ImageURL,
		"image_kind": member.ImageKind,
	}
	res, err := s.c.UpdateByID(ctx, member.ID, bson.M{"$set": set})
	if err != nil {
		return storageError("update member", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("member %s: %w", member.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a member that has no dependents, found through the parent_id index.
func (s *MemberStore) Delete(ctx context.Context, id string) error {
	children, err := s.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return &domain.HasChildrenError{MemberID: id, ChildrenCount: children}
	}

	var removed bson.Raw
	err = s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&removed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return storageError("delete member", err)
	}

	// a child inserted since the count puts the member back
	children, err = s.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		if _, err := s.c.InsertOne(ctx, removed); err != nil {
			return storageError("restore member", err)
		}
		return &domain.HasChildrenError{MemberID: id, ChildrenCount: children}
	}
	return nil
}

// CountChildren counts members whose parent is id.
func (s *MemberStore) CountChildren(ctx context.Context, id string) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"parent_id": id})
	if err != nil {
		return 0, storageError("count children", err)
	}
	return int(n), nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorage, err)
}
