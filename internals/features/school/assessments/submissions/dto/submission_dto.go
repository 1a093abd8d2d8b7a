package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"lingoschool_backend/internals/constants"
	submissionModel "lingoschool_backend/internals/features/school/assessments/submissions/model"
)

/* ===================== REQUEST ===================== */

type AnswerInput struct {
	QuestionID uuid.UUID       `json:"question_id" validate:"required"`
	UserAnswer json.RawMessage `json:"user_answer"`
}

type SubmitRequest struct {
	Answers []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

/* ===================== RESPONSE ===================== */

type GradeResult struct {
	SubmissionID uuid.UUID                      `json:"submission_id"`
	Kind         constants.SubmissionKind       `json:"kind"`
	Scores       submissionModel.SkillScores    `json:"scores,omitempty"`
	TotalScore   float64                        `json:"total_score"`
	MaxScore     float64                        `json:"max_score"`
	Answers      []submissionModel.GradedAnswer `json:"answers"`
	SubmittedAt  time.Time                      `json:"submitted_at"`
}

type StudentSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
	ClassRef *string   `json:"class_ref,omitempty"`
}

type ScoreRow struct {
	SubmissionID uuid.UUID                   `json:"submission_id"`
	Student      StudentSummary              `json:"student"`
	Scores       submissionModel.SkillScores `json:"scores,omitempty"`
	TotalScore   float64                     `json:"total_score"`
	MaxScore     float64                     `json:"max_score"`
	SubmittedAt  time.Time                   `json:"submitted_at"`
}

type ClassScoresResponse struct {
	LessonID    uuid.UUID  `json:"lesson_id"`
	ClassName   string     `json:"class_name"`
	Submissions []ScoreRow `json:"submissions"`
}

type ExamScoresResponse struct {
	ExamID      uuid.UUID  `json:"exam_id"`
	ClassName   string     `json:"class_name"`
	Submissions []ScoreRow `json:"submissions"`
}

type SubmissionResponse struct {
	ID          uuid.UUID                      `json:"id"`
	UserID      uuid.UUID                      `json:"user_id"`
	Kind        constants.SubmissionKind       `json:"kind"`
	LessonID    *uuid.UUID                     `json:"lesson_id,omitempty"`
	ExamID      *uuid.UUID                     `json:"exam_id,omitempty"`
	Scores      submissionModel.SkillScores    `json:"scores,omitempty"`
	TotalScore  float64                        `json:"total_score"`
	MaxScore    float64                        `json:"max_score"`
	Answers     []submissionModel.GradedAnswer `json:"answers,omitempty"`
	SubmittedAt time.Time                      `json:"submitted_at"`
}

// ToSubmissionResponse: withAnswers=false untuk listing riwayat.
func ToSubmissionResponse(m submissionModel.SubmissionModel, withAnswers bool) SubmissionResponse {
	r := SubmissionResponse{
		ID:          m.ID,
		UserID:      m.UserID,
		Kind:        m.Kind,
		LessonID:    m.LessonID,
		ExamID:      m.ExamID,
		Scores:      m.Scores.Data(),
		TotalScore:  m.TotalScore,
		MaxScore:    m.MaxScore,
		SubmittedAt: m.CreatedAt,
	}
	if withAnswers {
		r.Answers = m.Answers
	}
	return r
}

func ToScoreRow(m submissionModel.SubmissionModel) ScoreRow {
	row := ScoreRow{
		SubmissionID: m.ID,
		Scores:       m.Scores.Data(),
		TotalScore:   m.TotalScore,
		MaxScore:     m.MaxScore,
		SubmittedAt:  m.CreatedAt,
	}
	if m.User != nil {
		row.Student = StudentSummary{
			ID:       m.User.ID,
			Username: m.User.Username,
			FullName: m.User.FullName,
			ClassRef: m.User.ClassRef,
		}
	}
	return row
}
