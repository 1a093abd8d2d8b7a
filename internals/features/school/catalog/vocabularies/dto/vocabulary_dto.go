package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	vocabularyModel "lingoschool_backend/internals/features/school/catalog/vocabularies/model"
)

// CreateVocabularyRequest: JSON atau multipart (field file: image).
type CreateVocabularyRequest struct {
	LessonID      string   `json:"lesson_id" form:"lesson_id" validate:"required,uuid"`
	Word          string   `json:"word" form:"word" validate:"required,min=1,max=100"`
	Meaning       string   `json:"meaning" form:"meaning" validate:"required,min=1,max=255"`
	Pronunciation string   `json:"pronunciation" form:"pronunciation" validate:"max=100"`
	PartOfSpeech  string   `json:"part_of_speech" form:"part_of_speech" validate:"max=30"`
	Example       string   `json:"example" form:"example"`
	Synonyms      []string `json:"synonyms" form:"synonyms"`
	AudioURL      *string  `json:"audio_url" form:"audio_url" validate:"omitempty,url"`
	Order         *int     `json:"order" form:"order" validate:"omitempty,gte=1"`
	IsPublished   *bool    `json:"is_published" form:"is_published"`
}

func (r *CreateVocabularyRequest) Normalize() {
	r.LessonID = strings.TrimSpace(r.LessonID)
	r.Word = strings.TrimSpace(r.Word)
	r.Meaning = strings.TrimSpace(r.Meaning)
	r.Synonyms = cleanList(r.Synonyms)
}

type UpdateVocabularyRequest struct {
	Word          *string  `json:"word" form:"word" validate:"omitempty,min=1,max=100"`
	Meaning       *string  `json:"meaning" form:"meaning" validate:"omitempty,min=1,max=255"`
	Pronunciation *string  `json:"pronunciation" form:"pronunciation" validate:"omitempty,max=100"`
	PartOfSpeech  *string  `json:"part_of_speech" form:"part_of_speech" validate:"omitempty,max=30"`
	Example       *string  `json:"example" form:"example"`
	Synonyms      []string `json:"synonyms" form:"synonyms"`
	AudioURL      *string  `json:"audio_url" form:"audio_url" validate:"omitempty,url"`
	Order         *int     `json:"order" form:"order" validate:"omitempty,gte=1"`
	IsPublished   *bool    `json:"is_published" form:"is_published"`
	RemoveImage   bool     `json:"remove_image" form:"remove_image"`
}

// cleanList: trim, buang kosong & duplikat (urutan dipertahankan).
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(s)]; ok {
			continue
		}
		seen[strings.ToLower(s)] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (r *UpdateVocabularyRequest) Normalize() {
	if r.Synonyms != nil {
		r.Synonyms = cleanList(r.Synonyms)
	}
}

type VocabularyResponse struct {
	ID            uuid.UUID `json:"id"`
	LessonID      uuid.UUID `json:"lesson_id"`
	Word          string    `json:"word"`
	Meaning       string    `json:"meaning"`
	Pronunciation string    `json:"pronunciation,omitempty"`
	PartOfSpeech  string    `json:"part_of_speech,omitempty"`
	Example       string    `json:"example,omitempty"`
	Synonyms      []string  `json:"synonyms"`
	ImageURL      *string   `json:"image_url,omitempty"`
	AudioURL      *string   `json:"audio_url,omitempty"`
	Order         int       `json:"order"`
	IsPublished   bool      `json:"is_published"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToVocabularyResponse(m vocabularyModel.VocabularyModel) VocabularyResponse {
	syn := []string(m.Synonyms)
	if syn == nil {
		syn = []string{}
	}
	return VocabularyResponse{
		ID:            m.ID,
		LessonID:      m.LessonID,
		Word:          m.Word,
		Meaning:       m.Meaning,
		Pronunciation: m.Pronunciation,
		PartOfSpeech:  m.PartOfSpeech,
		Example:       m.Example,
		Synonyms:      syn,
		ImageURL:      m.ImageURL,
		AudioURL:      m.AudioURL,
		Order:         m.Order,
		IsPublished:   m.IsPublished,
		CreatedAt:     m.CreatedAt,
	}
}

func ToVocabularyResponses(rows []vocabularyModel.VocabularyModel) []VocabularyResponse {
	out := make([]VocabularyResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, ToVocabularyResponse(m))
	}
	return out
}
