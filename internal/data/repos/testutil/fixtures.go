package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/videolabel-backend/internal/domain"
)

func SeedVideo(tb testing.TB, ctx context.Context, tx *gorm.DB, uid string) *types.Video {
	tb.Helper()
	v := &types.Video{
		ID:       uuid.New(),
		VideoUID: uid,
		URL:      "https://videos.example.com/" + uid,
		Metadata: datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed video: %v", err)
	}
	return v
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, idStr, userType string) *types.User {
	tb.Helper()
	email := idStr + "@example.com"
	u := &types.User{
		ID:        uuid.New(),
		UserIDStr: idStr,
		Email:     &email,
		UserType:  userType,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, text string, options []string) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:    uuid.New(),
		Text:  text,
		QType: types.QuestionTypeDescription,
	}
	if len(options) > 0 {
		q.QType = types.QuestionTypeSingle
		q.Options = MustJSON(tb, options)
		q.DisplayValues = MustJSON(tb, options)
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedQuestionGroup(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, reusable bool, questions ...*types.Question) *types.QuestionGroup {
	tb.Helper()
	g := &types.QuestionGroup{
		ID:         uuid.New(),
		Title:      title,
		IsReusable: reusable,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed question group: %v", err)
	}
	for i, q := range questions {
		entry := &types.QuestionGroupEntry{
			ID:              uuid.New(),
			QuestionGroupID: g.ID,
			QuestionID:      q.ID,
			Position:        i,
		}
		if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
			tb.Fatalf("seed group entry: %v", err)
		}
	}
	return g
}

func SeedSchema(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, groups ...*types.QuestionGroup) *types.Schema {
	tb.Helper()
	s := &types.Schema{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed schema: %v", err)
	}
	for i, g := range groups {
		entry := &types.SchemaGroupEntry{
			ID:              uuid.New(),
			SchemaID:        s.ID,
			QuestionGroupID: g.ID,
			Position:        i,
		}
		if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
			tb.Fatalf("seed schema entry: %v", err)
		}
	}
	return s
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, schemaID uuid.UUID, videos ...*types.Video) *types.Project {
	tb.Helper()
	p := &types.Project{
		ID:       uuid.New(),
		Name:     name,
		SchemaID: schemaID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	for _, v := range videos {
		entry := &types.ProjectVideo{
			ID:        uuid.New(),
			ProjectID: p.ID,
			VideoID:   v.ID,
		}
		if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
			tb.Fatalf("seed project video: %v", err)
		}
	}
	return p
}

func SeedRole(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID, role string) *types.RoleAssignment {
	tb.Helper()
	ra := &types.RoleAssignment{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: projectID,
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(ra).Error; err != nil {
		tb.Fatalf("seed role: %v", err)
	}
	return ra
}

func MustJSON(tb testing.TB, v interface{}) datatypes.JSON {
	tb.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		tb.Fatalf("marshal json: %v", err)
	}
	return datatypes.JSON(raw)
}
