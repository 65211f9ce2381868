package services

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type VideoInput struct {
	VideoUID string
	URL      string
	Metadata map[string]interface{}
	Archived bool
}

type VideoService interface {
	DeriveUID(rawURL string) string
	ValidateNew(in VideoInput) error
	Create(dbc dbctx.Context, in VideoInput) (*types.Video, error)
	Diff(current *types.Video, in VideoInput) map[string]interface{}
	Update(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type videoService struct {
	repo videos.VideoRepo
	log  *logger.Logger
}

func NewVideoService(repo videos.VideoRepo, baseLog *logger.Logger) VideoService {
	return &videoService{repo: repo, log: baseLog.With("service", "VideoService")}
}

// DeriveUID takes the filename component of the video URL. "https://x/v1.mp4"
// becomes "v1.mp4".
func (s *videoService) DeriveUID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Path == "" {
		return path.Base(strings.TrimSpace(rawURL))
	}
	return path.Base(u.Path)
}

func (s *videoService) ValidateNew(in VideoInput) error {
	if strings.TrimSpace(in.URL) == "" {
		return fmt.Errorf("video url is required")
	}
	uid := in.VideoUID
	if uid == "" {
		uid = s.DeriveUID(in.URL)
	}
	if uid == "" || uid == "." || uid == "/" {
		return fmt.Errorf("cannot derive a video uid from url %q", in.URL)
	}
	return nil
}

func (s *videoService) Create(dbc dbctx.Context, in VideoInput) (*types.Video, error) {
	if err := s.ValidateNew(in); err != nil {
		return nil, err
	}
	uid := in.VideoUID
	if uid == "" {
		uid = s.DeriveUID(in.URL)
	}
	v := &types.Video{
		ID:         uuid.New(),
		VideoUID:   uid,
		URL:        in.URL,
		Metadata:   toJSON(in.Metadata),
		IsArchived: in.Archived,
	}
	if err := s.repo.Create(dbc, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Diff computes the minimal field updates to move the current row to the
// desired state. The uid is immutable and never part of the diff.
func (s *videoService) Diff(current *types.Video, in VideoInput) map[string]interface{} {
	updates := map[string]interface{}{}
	if in.URL != "" && in.URL != current.URL {
		updates["url"] = in.URL
	}
	if in.Metadata != nil && !jsonEqual(current.Metadata, in.Metadata) {
		updates["metadata"] = toJSON(in.Metadata)
	}
	if in.Archived != current.IsArchived {
		updates["is_archived"] = in.Archived
	}
	return updates
}

func (s *videoService) Update(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	return s.repo.UpdateFields(dbc, id, updates)
}
