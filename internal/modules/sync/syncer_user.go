package sync

import (
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
	"github.com/yungbote/videolabel-backend/internal/services"
)

type UserSyncer struct {
	docs []UserDoc
	svc  services.UserService
	repo users.UserRepo
	log  *logger.Logger
}

func NewUserSyncer(docs []UserDoc, svc services.UserService, repo users.UserRepo, baseLog *logger.Logger) *UserSyncer {
	return &UserSyncer{docs: docs, svc: svc, repo: repo, log: baseLog.With("syncer", KindUsers)}
}

func (s *UserSyncer) Kind() string { return KindUsers }

func (s *UserSyncer) Plan(dbc dbctx.Context) ([]Operation, []Failure, error) {
	var failures []Failure
	keys := make([]string, 0, len(s.docs))
	for _, d := range s.docs {
		if d.UserID == "" {
			failures = append(failures, shapeFailure(KindUsers, d.Email, "user_id is required"))
			keys = append(keys, "")
			continue
		}
		if d.UserType == "" {
			failures = append(failures, shapeFailure(KindUsers, d.UserID, "user_type is required"))
		}
		keys = append(keys, d.UserID)
	}
	failures = append(failures, dupCheck(KindUsers, nonEmpty(keys))...)
	if len(failures) > 0 {
		return nil, failures, nil
	}

	ops := make([]Operation, 0, len(s.docs))
	for i, d := range s.docs {
		current, err := s.repo.GetByIDStr(dbc, keys[i])
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, &userOp{
			key: keys[i],
			in: services.UserInput{
				UserIDStr: d.UserID,
				Email:     d.Email,
				Password:  d.Password,
				UserType:  d.UserType,
				Archived:  archived(d.IsActive),
			},
			current: current,
			svc:     s.svc,
			repo:    s.repo,
		})
	}
	return ops, nil, nil
}

type userOp struct {
	key     string
	in      services.UserInput
	current *types.User
	svc     services.UserService
	repo    users.UserRepo
}

func (o *userOp) Key() string { return o.key }

func (o *userOp) Action() Action {
	if o.current == nil {
		return ActionAdd
	}
	return ActionUpdate
}

func (o *userOp) Verify(dbc dbctx.Context) error {
	if o.current == nil {
		return o.svc.ValidateNew(o.in)
	}
	_, err := o.svc.Diff(o.current, o.in)
	return err
}

func (o *userOp) Apply(dbc dbctx.Context) (Outcome, error) {
	current, err := o.repo.GetByIDStr(dbc, o.key)
	if err != nil {
		return "", err
	}
	if current == nil {
		if _, err := o.svc.Create(dbc, o.in); err != nil {
			return "", err
		}
		return OutcomeCreated, nil
	}
	updates, err := o.svc.Diff(current, o.in)
	if err != nil {
		return "", err
	}
	if len(updates) == 0 {
		return OutcomeSkipped, nil
	}
	if err := o.svc.Update(dbc, current.ID, updates); err != nil {
		return "", err
	}
	return updateOutcome(current.IsArchived, o.in.Archived), nil
}
