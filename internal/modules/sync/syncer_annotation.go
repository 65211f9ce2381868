package sync

import (
	"fmt"
	"sort"

	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
	"github.com/yungbote/videolabel-backend/internal/services"
)

// AnnotationSyncer reconciles annotator answers and reviewer ground truth.
// One document is one operation: the submitter's answers for every question
// of one group on one video. Completion accounting runs inside each apply
// transaction so the percent always matches the committed rows.
type AnnotationSyncer struct {
	docs       []AnnotationDoc
	answers    services.AnnotationService
	truths     services.GroundTruthService
	completion services.CompletionService
	groups     taxonomy.QuestionGroupRepo
	groupSvc   services.QuestionGroupService
	projects   projectrepos.ProjectRepo
	videos     videos.VideoRepo
	users      users.UserRepo
	log        *logger.Logger
}

func NewAnnotationSyncer(
	docs []AnnotationDoc,
	answers services.AnnotationService,
	truths services.GroundTruthService,
	completion services.CompletionService,
	groups taxonomy.QuestionGroupRepo,
	groupSvc services.QuestionGroupService,
	projects projectrepos.ProjectRepo,
	vids videos.VideoRepo,
	usersRepo users.UserRepo,
	baseLog *logger.Logger,
) *AnnotationSyncer {
	return &AnnotationSyncer{
		docs:       docs,
		answers:    answers,
		truths:     truths,
		completion: completion,
		groups:     groups,
		groupSvc:   groupSvc,
		projects:   projects,
		videos:     vids,
		users:      usersRepo,
		log:        baseLog.With("syncer", KindAnnotations),
	}
}

func (s *AnnotationSyncer) Kind() string { return KindAnnotations }

func annotationKey(d AnnotationDoc) string {
	return fmt.Sprintf("%s/%s/%s/%s", d.ProjectName, d.VideoUID, d.UserName, d.QuestionGroupTitle)
}

func (s *AnnotationSyncer) Plan(dbc dbctx.Context) ([]Operation, []Failure, error) {
	var failures []Failure
	type planned struct {
		doc AnnotationDoc
		key string
	}
	var candidates []planned
	keys := make([]string, 0, len(s.docs))

	for _, d := range s.docs {
		key := annotationKey(d)
		if d.ProjectName == "" || d.VideoUID == "" || d.UserName == "" || d.QuestionGroupTitle == "" {
			failures = append(failures, shapeFailure(KindAnnotations, key,
				"project_name, video_uid, user_name and question_group_title are required"))
			continue
		}
		if len(d.Answers) == 0 {
			failures = append(failures, shapeFailure(KindAnnotations, key, "answers are required"))
			continue
		}
		if p, err := s.projects.GetByName(dbc, d.ProjectName); err != nil {
			return nil, nil, err
		} else if p == nil {
			failures = append(failures, notFoundFailure(KindProjects, d.ProjectName))
			continue
		}
		if v, err := s.videos.GetByUID(dbc, d.VideoUID); err != nil {
			return nil, nil, err
		} else if v == nil {
			failures = append(failures, notFoundFailure(KindVideos, d.VideoUID))
			continue
		}
		if u, err := s.users.GetByIDStr(dbc, d.UserName); err != nil {
			return nil, nil, err
		} else if u == nil {
			failures = append(failures, notFoundFailure(KindUsers, d.UserName))
			continue
		}
		if g, err := s.groups.GetByTitle(dbc, d.QuestionGroupTitle); err != nil {
			return nil, nil, err
		} else if g == nil {
			failures = append(failures, notFoundFailure(KindQuestionGroups, d.QuestionGroupTitle))
			continue
		}
		keys = append(keys, key)
		candidates = append(candidates, planned{doc: d, key: key})
	}
	failures = append(failures, dupCheck(KindAnnotations, keys)...)
	if len(failures) > 0 {
		return nil, failures, nil
	}

	ops := make([]Operation, 0, len(candidates))
	for _, c := range candidates {
		ops = append(ops, &annotationOp{
			key:    c.key,
			doc:    c.doc,
			syncer: s,
		})
	}
	return ops, nil, nil
}

type annotationOp struct {
	key    string
	doc    AnnotationDoc
	syncer *AnnotationSyncer
}

func (o *annotationOp) Key() string { return o.key }

// Answers always upsert; the tuple decides add vs update at apply time, so
// the classifier treats the whole document as an update candidate.
func (o *annotationOp) Action() Action { return ActionUpdate }

// questionTexts returns the document's answered questions in stable order.
func (o *annotationOp) questionTexts() []string {
	out := make([]string, 0, len(o.doc.Answers))
	for text := range o.doc.Answers {
		out = append(out, text)
	}
	sort.Strings(out)
	return out
}

// memberSet checks every answered question belongs to the named group.
func (o *annotationOp) memberSet(dbc dbctx.Context) (map[string]struct{}, error) {
	g, err := o.syncer.groups.GetByTitle(dbc, o.doc.QuestionGroupTitle)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("unknown question group %q", o.doc.QuestionGroupTitle)
	}
	texts, err := o.syncer.groupSvc.MemberTexts(dbc, g.ID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		set[t] = struct{}{}
	}
	return set, nil
}

func (o *annotationOp) Verify(dbc dbctx.Context) error {
	members, err := o.memberSet(dbc)
	if err != nil {
		return err
	}
	for _, text := range o.questionTexts() {
		if _, ok := members[text]; !ok {
			return fmt.Errorf("question %q is not a member of group %q", text, o.doc.QuestionGroupTitle)
		}
		if o.doc.IsGroundTruth {
			err = o.syncer.truths.ValidateSubmit(dbc, services.GroundTruthInput{
				ProjectName:  o.doc.ProjectName,
				VideoUID:     o.doc.VideoUID,
				QuestionText: text,
				ReviewerID:   o.doc.UserName,
				Value:        o.doc.Answers[text],
			})
		} else {
			err = o.syncer.answers.ValidateAnswer(dbc, o.buildAnswer(text))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *annotationOp) buildAnswer(text string) services.AnswerInput {
	in := services.AnswerInput{
		ProjectName:  o.doc.ProjectName,
		VideoUID:     o.doc.VideoUID,
		QuestionText: text,
		UserIDStr:    o.doc.UserName,
		Value:        o.doc.Answers[text],
		Notes:        o.doc.Notes,
	}
	if score, ok := o.doc.ConfidenceScores[text]; ok {
		c := score
		in.Confidence = &c
	}
	return in
}

func (o *annotationOp) Apply(dbc dbctx.Context) (Outcome, error) {
	anyCreated, anyChanged := false, false
	for _, text := range o.questionTexts() {
		var created, changed bool
		var err error
		if o.doc.IsGroundTruth {
			created, changed, err = o.syncer.truths.Submit(dbc, services.GroundTruthInput{
				ProjectName:  o.doc.ProjectName,
				VideoUID:     o.doc.VideoUID,
				QuestionText: text,
				ReviewerID:   o.doc.UserName,
				Value:        o.doc.Answers[text],
			})
		} else {
			created, changed, err = o.syncer.answers.SubmitAnswer(dbc, o.buildAnswer(text))
		}
		if err != nil {
			return "", err
		}
		anyCreated = anyCreated || created
		anyChanged = anyChanged || changed
	}

	if anyChanged {
		if err := o.recalc(dbc); err != nil {
			return "", err
		}
	}
	switch {
	case anyCreated:
		return OutcomeCreated, nil
	case anyChanged:
		return OutcomeUpdated, nil
	default:
		return OutcomeSkipped, nil
	}
}

func (o *annotationOp) recalc(dbc dbctx.Context) error {
	p, err := o.syncer.projects.GetByName(dbc, o.doc.ProjectName)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("unknown project %q", o.doc.ProjectName)
	}
	if o.doc.IsGroundTruth {
		_, err = o.syncer.completion.RecalcReviewers(dbc, p.ID)
		return err
	}
	u, err := o.syncer.users.GetByIDStr(dbc, o.doc.UserName)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("unknown user %q", o.doc.UserName)
	}
	_, err = o.syncer.completion.RecalcAnnotator(dbc, p.ID, u.ID)
	return err
}
