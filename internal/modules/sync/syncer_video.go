package sync

import (
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
	"github.com/yungbote/videolabel-backend/internal/services"
)

type VideoSyncer struct {
	docs []VideoDoc
	svc  services.VideoService
	repo videos.VideoRepo
	log  *logger.Logger
}

func NewVideoSyncer(docs []VideoDoc, svc services.VideoService, repo videos.VideoRepo, baseLog *logger.Logger) *VideoSyncer {
	return &VideoSyncer{docs: docs, svc: svc, repo: repo, log: baseLog.With("syncer", KindVideos)}
}

func (s *VideoSyncer) Kind() string { return KindVideos }

func (s *VideoSyncer) Plan(dbc dbctx.Context) ([]Operation, []Failure, error) {
	var failures []Failure
	keys := make([]string, 0, len(s.docs))
	for _, d := range s.docs {
		if d.URL == "" && d.VideoUID == "" {
			failures = append(failures, shapeFailure(KindVideos, d.VideoUID, "url is required"))
			keys = append(keys, "")
			continue
		}
		uid := d.VideoUID
		if uid == "" {
			uid = s.svc.DeriveUID(d.URL)
		}
		keys = append(keys, uid)
	}
	failures = append(failures, dupCheck(KindVideos, nonEmpty(keys))...)
	if len(failures) > 0 {
		return nil, failures, nil
	}

	ops := make([]Operation, 0, len(s.docs))
	for i, d := range s.docs {
		current, err := s.repo.GetByUID(dbc, keys[i])
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, &videoOp{
			key: keys[i],
			in: services.VideoInput{
				VideoUID: keys[i],
				URL:      d.URL,
				Metadata: d.Metadata,
				Archived: archived(d.IsActive),
			},
			current: current,
			svc:     s.svc,
			repo:    s.repo,
		})
	}
	return ops, nil, nil
}

type videoOp struct {
	key     string
	in      services.VideoInput
	current *types.Video
	svc     services.VideoService
	repo    videos.VideoRepo
}

func (o *videoOp) Key() string { return o.key }

func (o *videoOp) Action() Action {
	if o.current == nil {
		return ActionAdd
	}
	return ActionUpdate
}

func (o *videoOp) Verify(dbc dbctx.Context) error {
	if o.current == nil {
		return o.svc.ValidateNew(o.in)
	}
	return nil
}

func (o *videoOp) Apply(dbc dbctx.Context) (Outcome, error) {
	current, err := o.repo.GetByUID(dbc, o.key)
	if err != nil {
		return "", err
	}
	if current == nil {
		if _, err := o.svc.Create(dbc, o.in); err != nil {
			return "", err
		}
		return OutcomeCreated, nil
	}
	updates := o.svc.Diff(current, o.in)
	if len(updates) == 0 {
		return OutcomeSkipped, nil
	}
	if err := o.svc.Update(dbc, current.ID, updates); err != nil {
		return "", err
	}
	return updateOutcome(current.IsArchived, o.in.Archived), nil
}

// updateOutcome maps an applied update onto the report counters: a
// transition into the archived state counts as removed.
func updateOutcome(wasArchived, nowArchived bool) Outcome {
	if nowArchived && !wasArchived {
		return OutcomeRemoved
	}
	return OutcomeUpdated
}

func nonEmpty(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
