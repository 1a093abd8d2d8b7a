package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	grammarModel "lingoschool_backend/internals/features/school/catalog/grammars/model"
)

type CreateGrammarRequest struct {
	LessonID    uuid.UUID `json:"lesson_id" validate:"required"`
	Title       string    `json:"title" validate:"required,min=1,max=150"`
	Structure   string    `json:"structure" validate:"max=255"`
	Explanation string    `json:"explanation"`
	Examples    []string  `json:"examples"`
	Order       *int      `json:"order" validate:"omitempty,gte=1"`
	IsPublished *bool     `json:"is_published"`
}

func (r *CreateGrammarRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Structure = strings.TrimSpace(r.Structure)
	r.Examples = trimExamples(r.Examples)
}

type UpdateGrammarRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=150"`
	Structure   *string  `json:"structure" validate:"omitempty,max=255"`
	Explanation *string  `json:"explanation"`
	Examples    []string `json:"examples"`
	Order       *int     `json:"order" validate:"omitempty,gte=1"`
	IsPublished *bool    `json:"is_published"`
}

func (r *UpdateGrammarRequest) Normalize() {
	if r.Examples != nil {
		r.Examples = trimExamples(r.Examples)
	}
}

func trimExamples(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type GrammarResponse struct {
	ID          uuid.UUID `json:"id"`
	LessonID    uuid.UUID `json:"lesson_id"`
	Title       string    `json:"title"`
	Structure   string    `json:"structure,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	Examples    []string  `json:"examples"`
	Order       int       `json:"order"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToGrammarResponse(m grammarModel.GrammarModel) GrammarResponse {
	ex := []string(m.Examples)
	if ex == nil {
		ex = []string{}
	}
	return GrammarResponse{
		ID:          m.ID,
		LessonID:    m.LessonID,
		Title:       m.Title,
		Structure:   m.Structure,
		Explanation: m.Explanation,
		Examples:    ex,
		Order:       m.Order,
		IsPublished: m.IsPublished,
		CreatedAt:   m.CreatedAt,
	}
}

func ToGrammarResponses(rows []grammarModel.GrammarModel) []GrammarResponse {
	out := make([]GrammarResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, ToGrammarResponse(m))
	}
	return out
}
