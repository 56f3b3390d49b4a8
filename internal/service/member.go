package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"familytree/internal/config"
	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
	"familytree/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// memberService implements the MemberService interface
type memberService struct {
	memberRepo   repositories.MemberRepository
	sanitizer    *textSanitizer
	uploadPrefix string
	now          func() time.Time
	logger       *slog.Logger
}

// NewMemberService creates a new member service.
// uploadPrefix is the URL prefix of uploaded files, used to classify image references.
func NewMemberService(
	memberRepo repositories.MemberRepository,
	uploadPrefix string,
	logger *slog.Logger,
) services.MemberService {
	return &memberService{
		memberRepo:   memberRepo,
		sanitizer:    newTextSanitizer(),
		uploadPrefix: uploadPrefix,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *memberService) ListMembers(ctx context.Context) ([]models.Member, error) {
	return s.memberRepo.List(ctx)
}

func (s *memberService) GetMember(ctx context.Context, id string) (*models.Member, error) {
	return s.memberRepo.GetByID(ctx, id)
}

// CreateMember creates a new member
func (s *memberService) CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	name, err := s.sanitizer.Plain("name", req.Name)
	if err != nil {
		return nil, err
	}
	if err := validateMemberName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	image, err := models.NewImageRef(req.ImageURL, req.ImageKind, s.uploadPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: image: %v", domain.ErrValidation, err)
	}
	if err := validateImageRef(image); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// the repository rejects a parent that does not exist
	var parentID *string
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		id := strings.TrimSpace(*req.ParentID)
		parentID = &id
	}

	member := &models.Member{
		ID:        uuid.NewString(),
		Name:      name,
		ImageURL:  image.Value,
		ImageKind: image.Kind,
		ParentID:  parentID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("member created",
		"id", member.ID,
		"name", member.Name,
		"parent_id", req.ParentID,
	)

	return member, nil
}

// UpdateMember changes name and/or image. The parent never changes.
func (s *memberService) UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := s.sanitizer.Plain("name", *req.Name)
		if err != nil {
			return nil, err
		}
		if err := validateMemberName(name); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		member.Name = name
	}

	if req.ImageURL != nil || req.ImageKind != nil {
		raw := member.ImageURL
		if req.ImageURL != nil {
			raw = *req.ImageURL
		}
		var kind models.ImageKind
		if req.ImageKind != nil {
			kind = *req.ImageKind
		}

		image, err := models.NewImageRef(raw, kind, s.uploadPrefix)
		if err != nil {
			return nil, fmt.Errorf("%w: image: %v", domain.ErrValidation, err)
		}
		if err := validateImageRef(image); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		member.ImageURL = image.Value
		member.ImageKind = image.Kind
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("member updated",
		"id", member.ID,
		"name", member.Name,
		"image_kind", member.ImageKind,
	)

	return member, nil
}

// DeleteMember deletes a member that has no children
func (s *memberService) DeleteMember(ctx context.Context, id string) error {
	if err := s.memberRepo.Delete(ctx, id); err != nil {
		var hasChildren *domain.HasChildrenError
		if errors.As(err, &hasChildren) {
			s.logger.Info("member delete blocked",
				"id", id,
				"children", hasChildren.ChildrenCount,
			)
		}
		return err
	}

	s.logger.Info("member deleted", "id", id)
	return nil
}

// EnsureRoot seeds an empty tree with a single parentless member
func (s *memberService) EnsureRoot(ctx context.Context, name string) (*models.Member, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(members) > 0 {
		return nil, nil
	}

	if name == "" {
		name = config.DefaultRootName
	}
	return s.CreateMember(ctx, &models.CreateMemberRequest{Name: name})
}

func validateMemberName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("name is required"),
		validation.RuneLength(1, config.MaxMemberNameLength),
	)
}

func validateImageRef(ref models.ImageRef) error {
	return validation.ValidateStruct(&ref,
		validation.Field(&ref.Value, validation.Length(0, config.MaxImageRefLength)),
	)
}
