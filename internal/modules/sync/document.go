package sync

import (
	"encoding/json"
	"fmt"
)

// Entity kind names, in reference-dependency order. Kinds are reconciled
// strictly in this order; entities within a kind are independent.
const (
	KindVideos         = "videos"
	KindUsers          = "users"
	KindQuestionGroups = "question_groups"
	KindSchemas        = "schemas"
	KindProjects       = "projects"
	KindAssignments    = "assignments"
	KindCustomDisplays = "custom_displays"
	KindAnnotations    = "annotations"
)

// KindOrder lists every kind in reconciliation order.
var KindOrder = []string{
	KindVideos,
	KindUsers,
	KindQuestionGroups,
	KindSchemas,
	KindProjects,
	KindAssignments,
	KindCustomDisplays,
	KindAnnotations,
}

type VideoDoc struct {
	VideoUID string                 `json:"video_uid"`
	URL      string                 `json:"url"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	IsActive *bool                  `json:"is_active,omitempty"`
}

type UserDoc struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	UserType string `json:"user_type"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type QuestionDoc struct {
	Text          string             `json:"text"`
	QType         string             `json:"qtype"`
	Options       []string           `json:"options,omitempty"`
	DisplayValues []string           `json:"display_values,omitempty"`
	DefaultOption string             `json:"default_option,omitempty"`
	OptionWeights map[string]float64 `json:"option_weights,omitempty"`
}

type QuestionGroupDoc struct {
	Title                string        `json:"title"`
	Description          string        `json:"description,omitempty"`
	Questions            []QuestionDoc `json:"questions"`
	IsReusable           bool          `json:"is_reusable,omitempty"`
	IsAutoSubmit         bool          `json:"is_auto_submit,omitempty"`
	VerificationFunction string        `json:"verification_function,omitempty"`
	IsActive             *bool         `json:"is_active,omitempty"`
}

type SchemaDoc struct {
	SchemaName         string   `json:"schema_name"`
	QuestionGroupNames []string `json:"question_group_names"`
	InstructionsURL    string   `json:"instructions_url,omitempty"`
	HasCustomDisplay   bool     `json:"has_custom_display,omitempty"`
	IsActive           *bool    `json:"is_active,omitempty"`
}

// ProjectVideoRef accepts either a bare uid string or an object form
// `{"video_uid": ...}`.
type ProjectVideoRef struct {
	VideoUID string `json:"video_uid"`
}

func (r *ProjectVideoRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.VideoUID = s
		return nil
	}
	type plain ProjectVideoRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("video reference must be a uid string or an object: %w", err)
	}
	*r = ProjectVideoRef(p)
	return nil
}

type ProjectDoc struct {
	ProjectName string            `json:"project_name"`
	SchemaName  string            `json:"schema_name"`
	Videos      []ProjectVideoRef `json:"videos,omitempty"`
	Description string            `json:"description,omitempty"`
	IsActive    *bool             `json:"is_active,omitempty"`
}

// AssignmentDoc identifies the user by id string or email; exactly one must
// be set.
type AssignmentDoc struct {
	UserName    string `json:"user_name,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
	ProjectName string `json:"project_name"`
	Role        string `json:"role"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type CustomDisplayDoc struct {
	ProjectName   string   `json:"project_name"`
	VideoUID      string   `json:"video_uid"`
	QuestionText  string   `json:"question_text"`
	CustomText    string   `json:"custom_text,omitempty"`
	CustomOptions []string `json:"custom_options,omitempty"`
}

// AnnotationDoc carries one submitter's answers for the questions of one
// group on one video. is_ground_truth routes to the reviewer ground-truth
// path instead of the annotator answer path.
type AnnotationDoc struct {
	VideoUID           string             `json:"video_uid"`
	ProjectName        string             `json:"project_name"`
	UserName           string             `json:"user_name"`
	QuestionGroupTitle string             `json:"question_group_title"`
	Answers            map[string]string  `json:"answers"`
	IsGroundTruth      bool               `json:"is_ground_truth,omitempty"`
	ConfidenceScores   map[string]float64 `json:"confidence_scores,omitempty"`
	Notes              string             `json:"notes,omitempty"`
}

// DocumentSet is one sync run's desired state, one slice per kind.
type DocumentSet struct {
	Videos         []VideoDoc         `json:"videos,omitempty"`
	Users          []UserDoc          `json:"users,omitempty"`
	QuestionGroups []QuestionGroupDoc `json:"question_groups,omitempty"`
	Schemas        []SchemaDoc        `json:"schemas,omitempty"`
	Projects       []ProjectDoc       `json:"projects,omitempty"`
	Assignments    []AssignmentDoc    `json:"assignments,omitempty"`
	CustomDisplays []CustomDisplayDoc `json:"custom_displays,omitempty"`
	Annotations    []AnnotationDoc    `json:"annotations,omitempty"`
}

// DecodeInto parses one kind's JSON array into the set.
func (ds *DocumentSet) DecodeInto(kind string, data []byte) error {
	switch kind {
	case KindVideos:
		return json.Unmarshal(data, &ds.Videos)
	case KindUsers:
		return json.Unmarshal(data, &ds.Users)
	case KindQuestionGroups:
		return json.Unmarshal(data, &ds.QuestionGroups)
	case KindSchemas:
		return json.Unmarshal(data, &ds.Schemas)
	case KindProjects:
		return json.Unmarshal(data, &ds.Projects)
	case KindAssignments:
		return json.Unmarshal(data, &ds.Assignments)
	case KindCustomDisplays:
		return json.Unmarshal(data, &ds.CustomDisplays)
	case KindAnnotations:
		return json.Unmarshal(data, &ds.Annotations)
	default:
		return fmt.Errorf("unknown entity kind %q", kind)
	}
}

// archived maps the documents' is_active flag (default true) onto the
// storage layer's archived flag.
func archived(isActive *bool) bool {
	return isActive != nil && !*isActive
}

// dupCheck reports duplicate natural keys inside one batch as shape errors.
func dupCheck(kind string, keys []string) []Failure {
	seen := make(map[string]int, len(keys))
	var out []Failure
	for _, k := range keys {
		seen[k]++
		if seen[k] == 2 {
			e := &ShapeError{Kind: kind, Key: k, Reason: "duplicate natural key in batch"}
			out = append(out, Failure{Key: k, Reason: e.Error()})
		}
	}
	return out
}

func shapeFailure(kind, key, reason string) Failure {
	e := &ShapeError{Kind: kind, Key: key, Reason: reason}
	return Failure{Key: key, Reason: e.Error()}
}

func notFoundFailure(kind, key string) Failure {
	e := &NotFoundError{Kind: kind, Key: key}
	return Failure{Key: key, Reason: e.Error()}
}
