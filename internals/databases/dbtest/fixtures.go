package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	unitModel "lingoschool_backend/internals/features/school/catalog/units/model"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	userModel "lingoschool_backend/internals/features/users/user/model"
)

// Fixture: pembuat data seed kecil untuk test service & controller.
type Fixture struct {
	t  testing.TB
	DB *gorm.DB
}

func NewFixture(t testing.TB, db *gorm.DB) *Fixture {
	return &Fixture{t: t, DB: db}
}

func (f *Fixture) School(username string) *userModel.UserModel {
	return f.User(username, constants.RoleSchool, nil)
}

func (f *Fixture) Teacher(username string, schoolID uuid.UUID) *userModel.UserModel {
	return f.User(username, constants.RoleTeacher, &schoolID)
}

// Student: classRef nil = belum masuk kelas.
func (f *Fixture) Student(username string, schoolID uuid.UUID, classRef *string) *userModel.UserModel {
	u := f.build(username, constants.RoleStudent, &schoolID)
	u.ClassRef = classRef
	require.NoError(f.t, f.DB.Create(u).Error)
	return u
}

func (f *Fixture) User(username string, role constants.Role, schoolID *uuid.UUID) *userModel.UserModel {
	u := f.build(username, role, schoolID)
	require.NoError(f.t, f.DB.Create(u).Error)
	return u
}

func (f *Fixture) build(username string, role constants.Role, schoolID *uuid.UUID) *userModel.UserModel {
	return &userModel.UserModel{
		Username:     username,
		FullName:     username,
		PasswordHash: "-",
		Role:         role,
		SchoolID:     schoolID,
	}
}

func (f *Fixture) Class(schoolID uuid.UUID, grade, name string, homeroom *uuid.UUID) *classModel.ClassModel {
	c := &classModel.ClassModel{
		Name:              name,
		Grade:             grade,
		SchoolID:          schoolID,
		HomeroomTeacherID: homeroom,
		IsActive:          true,
	}
	require.NoError(f.t, f.DB.Create(c).Error)
	return c
}

func (f *Fixture) CoTeacher(classID, teacherID uuid.UUID) {
	require.NoError(f.t, f.DB.Create(&classModel.ClassTeacherModel{ClassID: classID, TeacherID: teacherID}).Error)
}

func (f *Fixture) Unit(schoolID uuid.UUID, title string) *unitModel.UnitModel {
	u := &unitModel.UnitModel{SchoolID: schoolID, Title: title, Slug: title, Order: 1, IsPublished: true}
	require.NoError(f.t, f.DB.Create(u).Error)
	return u
}

func (f *Fixture) Lesson(unit *unitModel.UnitModel, title string, skill constants.Skill) *lessonModel.LessonModel {
	l := &lessonModel.LessonModel{
		UnitID:      unit.ID,
		SchoolID:    unit.SchoolID,
		Title:       title,
		Slug:        title,
		LessonType:  skill,
		IsPublished: true,
	}
	require.NoError(f.t, f.DB.Create(l).Error)
	return l
}

func Ptr[T any](v T) *T { return &v }
