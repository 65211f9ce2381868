package services

import (
	"fmt"

	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/purge"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

// PurgeService hard-deletes an entity and everything referencing it. This is
// the only delete path in the system; sync runs archive instead.
type PurgeService interface {
	PurgeVideo(dbc dbctx.Context, videoUID string) error
	PurgeUser(dbc dbctx.Context, userIDStr string) error
	PurgeProject(dbc dbctx.Context, projectName string) error
}

type purgeService struct {
	purge    purge.PurgeRepo
	videos   videos.VideoRepo
	users    users.UserRepo
	projects projectrepos.ProjectRepo
	log      *logger.Logger
}

func NewPurgeService(
	purgeRepo purge.PurgeRepo,
	vids videos.VideoRepo,
	usersRepo users.UserRepo,
	projects projectrepos.ProjectRepo,
	baseLog *logger.Logger,
) PurgeService {
	return &purgeService{
		purge:    purgeRepo,
		videos:   vids,
		users:    usersRepo,
		projects: projects,
		log:      baseLog.With("service", "PurgeService"),
	}
}

func (s *purgeService) PurgeVideo(dbc dbctx.Context, videoUID string) error {
	v, err := s.videos.GetByUID(dbc, videoUID)
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("unknown video %q", videoUID)
	}
	s.log.Warn("purging video", "video_uid", videoUID)
	return s.purge.DeleteVideoCascade(dbc, v.ID)
}

func (s *purgeService) PurgeUser(dbc dbctx.Context, userIDStr string) error {
	u, err := s.users.GetByIDStr(dbc, userIDStr)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("unknown user %q", userIDStr)
	}
	s.log.Warn("purging user", "user_id", userIDStr)
	return s.purge.DeleteUserCascade(dbc, u.ID)
}

func (s *purgeService) PurgeProject(dbc dbctx.Context, projectName string) error {
	p, err := s.projects.GetByName(dbc, projectName)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("unknown project %q", projectName)
	}
	s.log.Warn("purging project", "project", projectName)
	return s.purge.DeleteProjectCascade(dbc, p.ID)
}
