package sync

import (
	"gorm.io/gorm"

	annrepos "github.com/yungbote/videolabel-backend/internal/data/repos/annotations"
	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
	"github.com/yungbote/videolabel-backend/internal/services"
)

// Deps wires the repos and services the syncers share. BuildDeps constructs
// the whole graph from a database handle; tests may assemble a partial Deps
// by hand.
type Deps struct {
	DB *gorm.DB

	Videos    videos.VideoRepo
	Users     users.UserRepo
	Questions taxonomy.QuestionRepo
	Groups    taxonomy.QuestionGroupRepo
	Schemas   taxonomy.SchemaRepo
	Projects  projectrepos.ProjectRepo
	ProjGrps  projectrepos.ProjectGroupRepo
	Roles     projectrepos.RoleRepo
	Answers   annrepos.AnswerRepo
	Truths    annrepos.GroundTruthRepo
	Reviews   annrepos.ReviewRepo
	Displays  annrepos.CustomDisplayRepo
	Journal   annrepos.JournalRepo

	VideoSvc      services.VideoService
	UserSvc       services.UserService
	QuestionSvc   services.QuestionService
	GroupSvc      services.QuestionGroupService
	SchemaSvc     services.SchemaService
	ProjectSvc    services.ProjectService
	ProjGrpSvc    services.ProjectGroupService
	RoleSvc       services.RoleService
	AnnotationSvc services.AnnotationService
	TruthSvc      services.GroundTruthService
	CompletionSvc services.CompletionService

	Log *logger.Logger
}

func BuildDeps(db *gorm.DB, baseLog *logger.Logger) Deps {
	d := Deps{DB: db, Log: baseLog}
	d.Videos = videos.NewVideoRepo(db, baseLog)
	d.Users = users.NewUserRepo(db, baseLog)
	d.Questions = taxonomy.NewQuestionRepo(db, baseLog)
	d.Groups = taxonomy.NewQuestionGroupRepo(db, baseLog)
	d.Schemas = taxonomy.NewSchemaRepo(db, baseLog)
	d.Projects = projectrepos.NewProjectRepo(db, baseLog)
	d.ProjGrps = projectrepos.NewProjectGroupRepo(db, baseLog)
	d.Roles = projectrepos.NewRoleRepo(db, baseLog)
	d.Answers = annrepos.NewAnswerRepo(db, baseLog)
	d.Truths = annrepos.NewGroundTruthRepo(db, baseLog)
	d.Reviews = annrepos.NewReviewRepo(db, baseLog)
	d.Displays = annrepos.NewCustomDisplayRepo(db, baseLog)
	d.Journal = annrepos.NewJournalRepo(db, baseLog)

	d.VideoSvc = services.NewVideoService(d.Videos, baseLog)
	d.UserSvc = services.NewUserService(d.Users, baseLog)
	d.QuestionSvc = services.NewQuestionService(d.Questions, baseLog)
	d.GroupSvc = services.NewQuestionGroupService(d.Groups, d.Questions, d.QuestionSvc, baseLog)
	d.SchemaSvc = services.NewSchemaService(d.Schemas, d.Groups, baseLog)
	d.ProjectSvc = services.NewProjectService(d.Projects, d.Schemas, d.Videos, baseLog)
	d.ProjGrpSvc = services.NewProjectGroupService(d.ProjGrps, d.Projects, d.Videos, baseLog)
	d.RoleSvc = services.NewRoleService(d.Roles, d.Users, d.Projects, baseLog)
	d.AnnotationSvc = services.NewAnnotationService(
		d.Answers, d.Reviews, d.Displays, d.Roles, d.Projects, d.Videos, d.Questions, d.Users, baseLog)
	d.TruthSvc = services.NewGroundTruthService(
		d.Truths, d.Roles, d.Projects, d.Videos, d.Questions, d.Users, baseLog)
	d.CompletionSvc = services.NewCompletionService(d.Projects, d.Roles, d.Answers, d.Truths, baseLog)
	return d
}

// CustomDisplaySvc builds the display service lazily; only the display
// syncer needs it.
func (d Deps) CustomDisplaySvc() services.CustomDisplayService {
	return services.NewCustomDisplayService(d.Displays, d.Projects, d.Schemas, d.Videos, d.Questions, d.Log)
}

// BuildSyncers assembles one syncer per kind present in the document set,
// in reconciliation order.
func BuildSyncers(ds *DocumentSet, d Deps) []Syncer {
	var out []Syncer
	if len(ds.Videos) > 0 {
		out = append(out, NewVideoSyncer(ds.Videos, d.VideoSvc, d.Videos, d.Log))
	}
	if len(ds.Users) > 0 {
		out = append(out, NewUserSyncer(ds.Users, d.UserSvc, d.Users, d.Log))
	}
	if len(ds.QuestionGroups) > 0 {
		out = append(out, NewQuestionGroupSyncer(ds.QuestionGroups, d.GroupSvc, d.Groups, d.Log))
	}
	if len(ds.Schemas) > 0 {
		out = append(out, NewSchemaSyncer(ds.Schemas, d.SchemaSvc, d.Schemas, d.Log))
	}
	if len(ds.Projects) > 0 {
		out = append(out, NewProjectSyncer(ds.Projects, d.ProjectSvc, d.Projects, d.Log))
	}
	if len(ds.Assignments) > 0 {
		out = append(out, NewAssignmentSyncer(ds.Assignments, d.RoleSvc, d.Users, d.Projects, d.Roles, d.Log))
	}
	if len(ds.CustomDisplays) > 0 {
		out = append(out, NewCustomDisplaySyncer(ds.CustomDisplays, d.CustomDisplaySvc(), d.Displays, d.Projects, d.Videos, d.Questions, d.Log))
	}
	if len(ds.Annotations) > 0 {
		out = append(out, NewAnnotationSyncer(ds.Annotations, d.AnnotationSvc, d.TruthSvc, d.CompletionSvc, d.Groups, d.GroupSvc, d.Projects, d.Videos, d.Users, d.Log))
	}
	return out
}
