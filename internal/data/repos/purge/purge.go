// Package purge is the administrative hard-delete path. The sync engine
// never deletes rows (archiving is its terminal state); these cascades exist
// for explicit operator cleanup and remove dependent rows in
// reverse-reference order, bypassing soft deletes.
package purge

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type PurgeRepo interface {
	DeleteVideoCascade(dbc dbctx.Context, videoID uuid.UUID) error
	DeleteUserCascade(dbc dbctx.Context, userID uuid.UUID) error
	DeleteProjectCascade(dbc dbctx.Context, projectID uuid.UUID) error
}

type purgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPurgeRepo(db *gorm.DB, baseLog *logger.Logger) PurgeRepo {
	return &purgeRepo{db: db, log: baseLog.With("repo", "PurgeRepo")}
}

func (r *purgeRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

// deleteReviewsForAnswers removes answer_review rows pointing at a set of
// answers selected by the given condition on annotator_answer.
func (r *purgeRepo) deleteReviewsForAnswers(t *gorm.DB, cond string, arg interface{}) error {
	var answerIDs []uuid.UUID
	if err := t.Model(&types.AnnotatorAnswer{}).
		Unscoped().
		Where(cond, arg).
		Pluck("id", &answerIDs).Error; err != nil {
		return err
	}
	if len(answerIDs) == 0 {
		return nil
	}
	return t.Unscoped().
		Where("answer_id IN ?", answerIDs).
		Delete(&types.AnswerReview{}).Error
}

func (r *purgeRepo) DeleteVideoCascade(dbc dbctx.Context, videoID uuid.UUID) error {
	t := r.tx(dbc)
	if err := r.deleteReviewsForAnswers(t, "video_id = ?", videoID); err != nil {
		return err
	}
	for _, step := range []error{
		t.Unscoped().Where("video_id = ?", videoID).Delete(&types.AnnotatorAnswer{}).Error,
		t.Unscoped().Where("video_id = ?", videoID).Delete(&types.ReviewerGroundTruth{}).Error,
		t.Unscoped().Where("video_id = ?", videoID).Delete(&types.CustomDisplay{}).Error,
		t.Where("video_id = ?", videoID).Delete(&types.ProjectVideo{}).Error,
		t.Unscoped().Where("id = ?", videoID).Delete(&types.Video{}).Error,
	} {
		if step != nil {
			return step
		}
	}
	return nil
}

func (r *purgeRepo) DeleteUserCascade(dbc dbctx.Context, userID uuid.UUID) error {
	t := r.tx(dbc)
	if err := r.deleteReviewsForAnswers(t, "user_id = ?", userID); err != nil {
		return err
	}
	for _, step := range []error{
		t.Unscoped().Where("reviewer_id = ?", userID).Delete(&types.AnswerReview{}).Error,
		t.Unscoped().Where("user_id = ?", userID).Delete(&types.AnnotatorAnswer{}).Error,
		t.Unscoped().Where("reviewer_id = ?", userID).Delete(&types.ReviewerGroundTruth{}).Error,
		t.Unscoped().Where("user_id = ?", userID).Delete(&types.RoleAssignment{}).Error,
		t.Unscoped().Where("id = ?", userID).Delete(&types.User{}).Error,
	} {
		if step != nil {
			return step
		}
	}
	return nil
}

func (r *purgeRepo) DeleteProjectCascade(dbc dbctx.Context, projectID uuid.UUID) error {
	t := r.tx(dbc)
	if err := r.deleteReviewsForAnswers(t, "project_id = ?", projectID); err != nil {
		return err
	}
	for _, step := range []error{
		t.Unscoped().Where("project_id = ?", projectID).Delete(&types.AnnotatorAnswer{}).Error,
		t.Unscoped().Where("project_id = ?", projectID).Delete(&types.ReviewerGroundTruth{}).Error,
		t.Unscoped().Where("project_id = ?", projectID).Delete(&types.CustomDisplay{}).Error,
		t.Unscoped().Where("project_id = ?", projectID).Delete(&types.RoleAssignment{}).Error,
		t.Where("project_id = ?", projectID).Delete(&types.ProjectVideo{}).Error,
		t.Where("project_id = ?", projectID).Delete(&types.ProjectGroupEntry{}).Error,
		t.Unscoped().Where("id = ?", projectID).Delete(&types.Project{}).Error,
	} {
		if step != nil {
			return step
		}
	}
	return nil
}
