package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/pkg/helpers"
)

var ErrProfileEditingUnavailable = errors.New("profile editing is not available")

// ProfileService edits and searches profiles on behalf of a signed-in
// portal. Every operation is scoped to the portal's own profile or
// organization.
type ProfileService struct {
	Repo            repository.ProfileRepository
	GCS             *storage.Client
	GCSBucket       string
	Directory       *ProfileDirectory
	Logger          *logrus.Logger
}

func NewProfileService(repo repository.ProfileRepository, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		Repo:            repo,
		GCS:             gcs,
		GCSBucket:       gcsBucket,
		Directory:       NewProfileDirectory(es, esIndex, logger),
		Logger:          logger,
	}
}

type UpdateProfileInput struct {
	FullName string
	Phone    string
}

func (s *ProfileService) index(ctx context.Context, u *entity.Profile) {
	if err := s.Directory.IndexProfile(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("profile_id", u.ID).Warn("directory index failed")
	}
}

func (s *ProfileService) current(ctx context.Context, p *Portal) (*entity.Profile, error) {
	if s.Repo == nil {
		return nil, ErrProfileEditingUnavailable
	}
	snap := p.Session()
	if snap.Profile == nil {
		return nil, ErrNotAuthenticated
	}
	u, err := s.Repo.GetByID(ctx, snap.Profile.ID)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return u, nil
}

// UpdateProfile changes display fields and re-resolves the session so
// the store keeps a single writer.
func (s *ProfileService) UpdateProfile(ctx context.Context, p *Portal, in UpdateProfileInput) (*entity.Profile, error) {
	u, err := s.current(ctx, p)
	if err != nil {
		return nil, err
	}
	if in.FullName != "" {
		u.FullName = in.FullName
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	p.Reload(ctx)
	s.index(ctx, u)
	return u, nil
}

// UploadAvatar stores the image in GCS and records its URL on the profile.
func (s *ProfileService) UploadAvatar(ctx context.Context, p *Portal, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.current(ctx, p)
	if err != nil {
		return "", err
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", u.OrgID(), u.ID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, helpers.Object{
		Bucket:       s.GCSBucket,
		Path:         objectPath,
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
		Metadata:     map[string]string{"profile_id": u.ID, "organization_id": u.OrgID()},
	}, r)
	if err != nil {
		return "", err
	}
	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return "", err
	}
	p.Reload(ctx)
	s.index(ctx, u)
	return url, nil
}

// SearchDirectory searches profiles of the portal's organization.
// Organization-less sessions see an empty directory.
func (s *ProfileService) SearchDirectory(ctx context.Context, p *Portal, q string, size int) ([]map[string]any, error) {
	snap := p.Session()
	if snap.Identity == nil {
		return nil, ErrNotAuthenticated
	}
	if snap.Organization == nil {
		return []map[string]any{}, nil
	}
	return s.Directory.Search(ctx, snap.Organization.ID, q, size)
}
