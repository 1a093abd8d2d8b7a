package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "student", want: RoleStudent},
		{in: " Teacher ", want: RoleTeacher},
		{in: "SCHOOL", want: RoleSchool},
		{in: "admin", want: RoleAdmin},
		{in: "owner", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuestionTypeAutoGraded(t *testing.T) {
	for _, qt := range AllQuestionTypes {
		assert.Equal(t, qt != QuestionEssay, qt.AutoGraded(), string(qt))
	}
	assert.False(t, QuestionType("poll").Valid())
}

func TestDetectMediaKind(t *testing.T) {
	assert.Equal(t, MediaImage, DetectMediaKind("cover.JPG"))
	assert.Equal(t, MediaVideo, DetectMediaKind("intro.mp4"))
	assert.Equal(t, MediaAudio, DetectMediaKind("word.mp3"))
	assert.Equal(t, MediaOther, DetectMediaKind("notes"))
}
