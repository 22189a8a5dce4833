package services

import (
	"context"
	"encoding/json"
	"fmt"

	"studyhall/models"

	"github.com/tmc/langchaingo/llms"
)

type fakeCourseRepo struct {
	courses map[string]*models.Course
}

func newFakeCourseRepo(courses ...*models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: make(map[string]*models.Course)}
	for _, course := range courses {
		repo.courses[course.ID] = course
	}
	return repo
}

func (r *fakeCourseRepo) CreateCourse(course *models.Course) error {
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) GetCourseByID(id string) (*models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, models.ErrCourseNotFound
	}
	return course, nil
}

func (r *fakeCourseRepo) GetAllCourses() ([]*models.Course, error) {
	courses := make([]*models.Course, 0, len(r.courses))
	for _, course := range r.courses {
		courses = append(courses, course)
	}
	return courses, nil
}

type fakeArtifactRepo struct {
	artifacts map[string]map[string]string
}

func newFakeArtifactRepo() *fakeArtifactRepo {
	return &fakeArtifactRepo{artifacts: make(map[string]map[string]string)}
}

func (r *fakeArtifactRepo) PutArtifact(courseID, kind, content string) error {
	if r.artifacts[courseID] == nil {
		r.artifacts[courseID] = make(map[string]string)
	}
	r.artifacts[courseID][kind] = content
	return nil
}

func (r *fakeArtifactRepo) GetArtifact(courseID, kind string) (string, error) {
	content, ok := r.artifacts[courseID][kind]
	if !ok {
		return "", models.ErrArtifactNotFound
	}
	return content, nil
}

func (r *fakeArtifactRepo) ListKinds(courseID string) ([]string, error) {
	kinds := make([]string, 0, len(r.artifacts[courseID]))
	for kind := range r.artifacts[courseID] {
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

type stubModel struct {
	responses []*llms.ContentResponse
	errs      []error
	calls     int
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	i := m.calls
	m.calls++

	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return nil, err
	}

	if i < len(m.responses) && m.responses[i] != nil {
		return m.responses[i], nil
	}
	return nil, fmt.Errorf("no scripted response for call %d", i)
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func toolResponse(name string, args any) *llms.ContentResponse {
	raw, _ := json.Marshal(args)
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      name,
					Arguments: string(raw),
				},
			}},
		}},
	}
}
