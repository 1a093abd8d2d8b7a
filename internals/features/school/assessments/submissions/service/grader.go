package service

import (
	"encoding/json"
	"strings"

	"github.com/bytedance/sonic"

	"lingoschool_backend/internals/constants"
	questionModel "lingoschool_backend/internals/features/school/assessments/questions/model"
	submissionModel "lingoschool_backend/internals/features/school/assessments/submissions/model"
)

// strategy: nil = tidak dinilai otomatis.
type strategy func(correct, answer []byte) *bool

var strategies = map[constants.QuestionType]strategy{
	constants.QuestionMCQ:       exactMatch,
	constants.QuestionFillBlank: exactMatch,
	constants.QuestionMatching:  exactMatch,
	constants.QuestionTrueFalse: exactMatch,
	constants.QuestionEssay:     func(_, _ []byte) *bool { return nil },
}

// canonicalJSON: decode lalu encode ulang dengan key map terurut.
// Array tetap sensitif urutan.
func canonicalJSON(raw []byte) (string, bool) {
	var v any
	if err := sonic.ConfigStd.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	out, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func exactMatch(correct, answer []byte) *bool {
	ok := false
	want, okW := canonicalJSON(correct)
	got, okG := canonicalJSON(answer)
	if okW && okG {
		ok = want == got
	}
	return &ok
}

// GradeAnswer murni fungsi dari (soal, jawaban); hasilnya jadi snapshot di submission.
func GradeAnswer(q questionModel.QuestionModel, answer json.RawMessage) submissionModel.GradedAnswer {
	ga := submissionModel.GradedAnswer{
		QuestionID: q.ID,
		Type:       q.Type,
		Skill:      q.Skill,
		Prompt:     q.Prompt,
		UserAnswer: normalizeRaw(answer),
		Points:     q.Points,
	}
	if len(q.CorrectAnswer) > 0 {
		ga.CorrectAnswer = json.RawMessage(q.CorrectAnswer)
	}

	grade, ok := strategies[q.Type]
	if !ok || !q.Type.AutoGraded() {
		return ga
	}
	ga.IsCorrect = grade(q.CorrectAnswer, answer)
	if ga.IsCorrect != nil && *ga.IsCorrect {
		ga.PointsAwarded = q.Points
	}
	return ga
}

func normalizeRaw(raw json.RawMessage) json.RawMessage {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

// Tally menjumlahkan poin; skill breakdown hanya untuk lesson.
func Tally(kind constants.SubmissionKind, answers []submissionModel.GradedAnswer) (total, maxScore float64, scores submissionModel.SkillScores) {
	if kind == constants.SubmissionLesson {
		scores = submissionModel.NewSkillScores()
	}
	for _, a := range answers {
		total += a.PointsAwarded
		if a.Type.AutoGraded() {
			maxScore += a.Points
		}
		if scores != nil {
			scores[a.Skill] += a.PointsAwarded
		}
	}
	return total, maxScore, scores
}
