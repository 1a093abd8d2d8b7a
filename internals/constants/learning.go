package constants

import "strings"

// Skill dipakai sebagai lessonType dan tag skill pada question.
type Skill string

const (
	SkillVocabulary Skill = "vocabulary"
	SkillGrammar    Skill = "grammar"
	SkillReading    Skill = "reading"
	SkillListening  Skill = "listening"
	SkillSpeaking   Skill = "speaking"
	SkillWriting    Skill = "writing"
)

var AllSkills = []Skill{SkillVocabulary, SkillGrammar, SkillReading, SkillListening, SkillSpeaking, SkillWriting}

func (s Skill) Valid() bool {
	for _, k := range AllSkills {
		if k == s {
			return true
		}
	}
	return false
}

func ParseSkill(s string) (Skill, bool) {
	k := Skill(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "true_false"
	QuestionFillBlank QuestionType = "fill_blank"
	QuestionMatching  QuestionType = "matching"
	QuestionEssay     QuestionType = "essay"
)

var AllQuestionTypes = []QuestionType{QuestionMCQ, QuestionTrueFalse, QuestionFillBlank, QuestionMatching, QuestionEssay}

func (t QuestionType) Valid() bool {
	for _, k := range AllQuestionTypes {
		if k == t {
			return true
		}
	}
	return false
}

// AutoGraded: essay tidak pernah dinilai otomatis.
func (t QuestionType) AutoGraded() bool { return t != QuestionEssay }

type ExamType string

const (
	Exam15Minutes ExamType = "15m"
	Exam45Minutes ExamType = "45m"
)

func (t ExamType) Valid() bool { return t == Exam15Minutes || t == Exam45Minutes }

// SubmissionKind: target penilaian.
type SubmissionKind string

const (
	SubmissionLesson SubmissionKind = "lesson"
	SubmissionExam   SubmissionKind = "exam"
)

// Folder upload media
const (
	FolderUnits        = "units"
	FolderVideos       = "videos"
	FolderVocabularies = "vocabularies"
	FolderAvatars      = "avatars"
	FolderAnnouncement = "announcements"
)
