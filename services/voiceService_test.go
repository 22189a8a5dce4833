package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studyhall/db"
	"studyhall/models"
)

func TestMintTokenSeedsInstructions(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"client_secret":{"value":"ephemeral"}}`))
	}))
	defer upstream.Close()

	courses := newFakeCourseRepo(testCourse())
	artifacts := newFakeArtifactRepo()
	artifacts.PutArtifact("course-1", db.KindPrompt, "You are a photosynthesis tutor.")
	db.SaveBank(artifacts, "course-1", []models.QuestionBankEntry{
		{Question: "Easy one?", Answer: "A", Difficulty: models.DifficultyEasy},
		{Question: "Hard one?", Answer: "B", Difficulty: models.DifficultyHard},
		{Question: "Another easy one?", Answer: "C", Difficulty: models.DifficultyEasy},
	})

	service := NewVoiceService(courses, artifacts, upstream.URL, "secret-key", "realtime-model")

	token, err := service.MintToken(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("MintToken() error = %v", err)
	}

	if token.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, expected upstream status to pass through", token.StatusCode)
	}
	if !strings.Contains(string(token.Body), "ephemeral") {
		t.Error("upstream body should pass through untouched")
	}
	if token.BaselineQuestions != 2 {
		t.Errorf("baseline questions = %d, expected only the easy entries", token.BaselineQuestions)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotPayload["model"] != "realtime-model" {
		t.Errorf("model = %q", gotPayload["model"])
	}
	if !strings.Contains(gotPayload["instructions"], "You are a photosynthesis tutor.") {
		t.Error("instructions should include the tutor prompt")
	}
	if strings.Contains(gotPayload["instructions"], "Hard one?") {
		t.Error("hard bank questions should not be seeded as warm-ups")
	}
}

func TestMintTokenUnknownCourse(t *testing.T) {
	service := NewVoiceService(newFakeCourseRepo(), newFakeArtifactRepo(), "http://unused", "key", "model")

	_, err := service.MintToken(context.Background(), "missing")
	if !errors.Is(err, models.ErrCourseNotFound) {
		t.Fatalf("MintToken() error = %v, expected ErrCourseNotFound", err)
	}
}
