// Package entries runs report submissions and scoped reads.
//
// Every call reloads the acting user from the credential store; role,
// name and section come from that record, never from the token or payload.
package entries

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/database/repo/accounts"
	entryrepo "github.com/greencampus/facility-reports/database/repo/entries"
	"github.com/greencampus/facility-reports/internal/apperr"
	"github.com/greencampus/facility-reports/internal/policy"
	"github.com/greencampus/facility-reports/internal/submission"
	"github.com/greencampus/facility-reports/internal/worker"
	"github.com/greencampus/facility-reports/utils"
)

// UserLookup loads the acting user
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// PhotoHost moves inline photos to storage
type PhotoHost interface {
	HostAll(ctx context.Context, photos []models.Photo) ([]models.Photo, []string, error)
	Discard(keys []string)
}

// CacheInvalidator drops derived aggregates after a write
type CacheInvalidator interface {
	RefreshCache(ctx context.Context) error
}

// Service 报告提交与查询服务
type Service struct {
	users       UserLookup
	waste       *entryrepo.Repository[models.WasteEntry]
	resources   *entryrepo.Repository[models.ResourceEntry]
	spaces      *entryrepo.Repository[models.SpaceEntry]
	photos      PhotoHost
	invalidator CacheInvalidator
}

// Repositories groups the three entry stores
type Repositories struct {
	Waste     *entryrepo.Repository[models.WasteEntry]
	Resources *entryrepo.Repository[models.ResourceEntry]
	Spaces    *entryrepo.Repository[models.SpaceEntry]
}

// NewService 创建报告服务; photos and invalidator may be nil
func NewService(users UserLookup, repos Repositories, photos PhotoHost, invalidator CacheInvalidator) *Service {
	return &Service{
		users:       users,
		waste:       repos.Waste,
		resources:   repos.Resources,
		spaces:      repos.Spaces,
		photos:      photos,
		invalidator: invalidator,
	}
}

// actor loads the stored user behind a verified token
func (s *Service) actor(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		log.Printf("[Entries] Failed to load user %s: %v", userID, err)
		return nil, apperr.Persistence(err)
	}
	return user, nil
}

func authorize(user *models.User, action policy.Action) error {
	if !policy.Allowed(user.Role, action) {
		return apperr.Authorization(policy.DenyMessage(user.Role, action))
	}
	return nil
}

func submitter(user *models.User) models.Submitter {
	return models.Submitter{
		SubmittedBy:      user.ID,
		SubmittedByName:  user.FullName,
		SubmittedRole:    user.Role,
		SubmittedSection: user.Section,
	}
}

// SubmitWaste records a daily waste log
func (s *Service) SubmitWaste(ctx context.Context, userID string, in submission.WasteInput) (*models.WasteEntry, error) {
	user, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(user, policy.SubmitWaste); err != nil {
		return nil, err
	}
	entry, err := submission.Waste(in)
	if err != nil {
		return nil, err
	}

	entry.Submitter = submitter(user)
	if entry.SubmittedSection == "" {
		entry.SubmittedSection = strings.TrimSpace(in.ClassSection)
	}
	entry.SubmittedGrade = user.Grade

	if err := persist(ctx, s, s.waste, entry, "waste entry", user); err != nil {
		return nil, err
	}
	return entry, nil
}

// SubmitResource records a weekly resources report
func (s *Service) SubmitResource(ctx context.Context, userID string, in submission.ResourceInput) (*models.ResourceEntry, error) {
	user, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(user, policy.SubmitResource); err != nil {
		return nil, err
	}
	entry, err := submission.Resource(in)
	if err != nil {
		return nil, err
	}

	entry.Submitter = submitter(user)
	if err := persist(ctx, s, s.resources, entry, "resource report", user); err != nil {
		return nil, err
	}
	return entry, nil
}

// SubmitSpace records an unused space survey
func (s *Service) SubmitSpace(ctx context.Context, userID string, in submission.SpaceInput) (*models.SpaceEntry, error) {
	user, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(user, policy.SubmitSpace); err != nil {
		return nil, err
	}
	entry, err := submission.Space(in)
	if err != nil {
		return nil, err
	}

	entry.Submitter = submitter(user)
	if err := persist(ctx, s, s.spaces, entry, "space report", user); err != nil {
		return nil, err
	}
	return entry, nil
}

// persist hosts inline photos, then inserts the entry. Stored photos are
// discarded again when the insert fails.
func persist[T entryrepo.Entry](ctx context.Context, s *Service, repo *entryrepo.Repository[T], entry *T, kind string, user *models.User) error {
	var written []string
	if s.photos != nil {
		carrier := any(entry).(models.PhotoCarrier)
		hosted, keys, err := s.photos.HostAll(ctx, carrier.GetPhotos())
		if err != nil {
			return err
		}
		carrier.SetPhotos(hosted)
		written = keys
	}

	if err := repo.Create(ctx, entry); err != nil {
		if s.photos != nil {
			s.photos.Discard(written)
		}
		log.Printf("[Entries] Failed to save %s for %s: %v", kind, utils.SanitizeLogUsername(user.Username), err)
		return apperr.Persistence(err)
	}

	log.Printf("[Entries] %s %s submitted by %s", kind, any(entry).(models.PhotoCarrier).GetID(), utils.SanitizeLogUsername(user.Username))
	s.invalidate()
	return nil
}

// invalidate drops the cached dashboard aggregate in the background
func (s *Service) invalidate() {
	if s.invalidator == nil {
		return
	}
	worker.Submit(func() {
		if err := s.invalidator.RefreshCache(context.Background()); err != nil {
			log.Printf("[Entries] Failed to refresh dashboard cache: %v", err)
		}
	})
}

// scope returns the filter the acting user's role allows
func (s *Service) scope(ctx context.Context, userID string, action policy.Action, limit int) (entryrepo.Filter, error) {
	user, err := s.actor(ctx, userID)
	if err != nil {
		return entryrepo.Filter{}, err
	}
	if err := authorize(user, action); err != nil {
		return entryrepo.Filter{}, err
	}
	filter := entryrepo.Filter{Limit: limit}
	if policy.ScopeFor(user.Role) == policy.ScopeOwn {
		filter.SubmittedBy = user.ID
	}
	return filter, nil
}

func list[T entryrepo.Entry](ctx context.Context, repo *entryrepo.Repository[T], filter entryrepo.Filter) ([]T, error) {
	items, err := repo.List(ctx, filter)
	if err != nil {
		log.Printf("[Entries] Failed to list entries: %v", err)
		return nil, apperr.Persistence(err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// ListWaste newest first; management sees every entry, others their own
func (s *Service) ListWaste(ctx context.Context, userID string, limit int) ([]models.WasteEntry, error) {
	filter, err := s.scope(ctx, userID, policy.ReadWaste, limit)
	if err != nil {
		return nil, err
	}
	return list(ctx, s.waste, filter)
}

// ListResources newest week first
func (s *Service) ListResources(ctx context.Context, userID string, limit int) ([]models.ResourceEntry, error) {
	filter, err := s.scope(ctx, userID, policy.ReadResource, limit)
	if err != nil {
		return nil, err
	}
	return list(ctx, s.resources, filter)
}

// ListSpaces newest first
func (s *Service) ListSpaces(ctx context.Context, userID string, limit int) ([]models.SpaceEntry, error) {
	filter, err := s.scope(ctx, userID, policy.ReadSpace, limit)
	if err != nil {
		return nil, err
	}
	return list(ctx, s.spaces, filter)
}
