package domain

import (
	"github.com/yungbote/videolabel-backend/internal/domain/annotations"
	"github.com/yungbote/videolabel-backend/internal/domain/catalog"
	"github.com/yungbote/videolabel-backend/internal/domain/projects"
	"github.com/yungbote/videolabel-backend/internal/domain/taxonomy"
)

const (
	UserTypeHuman = catalog.UserTypeHuman
	UserTypeModel = catalog.UserTypeModel
	UserTypeAdmin = catalog.UserTypeAdmin

	QuestionTypeSingle      = taxonomy.QuestionTypeSingle
	QuestionTypeDescription = taxonomy.QuestionTypeDescription

	RoleAnnotator = projects.RoleAnnotator
	RoleReviewer  = projects.RoleReviewer
	RoleAdmin     = projects.RoleAdmin
	RoleModel     = projects.RoleModel

	ReviewStatusPending  = annotations.ReviewStatusPending
	ReviewStatusApproved = annotations.ReviewStatusApproved
	ReviewStatusRejected = annotations.ReviewStatusRejected

	JournalStatusStarted = annotations.JournalStatusStarted
	JournalStatusDone    = annotations.JournalStatusDone
	JournalStatusFailed  = annotations.JournalStatusFailed
)

type Video = catalog.Video
type User = catalog.User

type Question = taxonomy.Question
type QuestionGroup = taxonomy.QuestionGroup
type QuestionGroupEntry = taxonomy.QuestionGroupEntry
type Schema = taxonomy.Schema
type SchemaGroupEntry = taxonomy.SchemaGroupEntry

type Project = projects.Project
type ProjectVideo = projects.ProjectVideo
type ProjectGroup = projects.ProjectGroup
type ProjectGroupEntry = projects.ProjectGroupEntry
type RoleAssignment = projects.RoleAssignment

type AnnotatorAnswer = annotations.AnnotatorAnswer
type ReviewerGroundTruth = annotations.ReviewerGroundTruth
type AnswerReview = annotations.AnswerReview
type CustomDisplay = annotations.CustomDisplay
type SyncJournal = annotations.SyncJournal

func RoleImplies(role, other string) bool { return projects.RoleImplies(role, other) }
