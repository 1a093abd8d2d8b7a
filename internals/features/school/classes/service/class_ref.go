package service

import (
	"strings"

	"github.com/google/uuid"

	classModel "lingoschool_backend/internals/features/school/classes/model"
)

// ClassRef adalah isi kolom users.class_ref yang sudah di-parse:
// ByID (bentuk kanonik) atau ByName (data lama yang masih menyimpan nama kelas).
type ClassRef interface {
	isClassRef()
}

type ByID struct{ ID uuid.UUID }

type ByName struct{ Name string }

func (ByID) isClassRef()   {}
func (ByName) isClassRef() {}

// ParseClassRef: nil/"" → (nil,false). String uuid → ByID, selain itu ByName
// dengan nilai apa adanya (nama dibandingkan persis, tanpa trim/case-folding).
func ParseClassRef(raw *string) (ClassRef, bool) {
	if raw == nil {
		return nil, false
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, false
	}
	if id, err := uuid.Parse(s); err == nil && id != uuid.Nil {
		return ByID{ID: id}, true
	}
	return ByName{Name: *raw}, true
}

// StoredRef: penulisan baru selalu bentuk ByID.
func StoredRef(classID uuid.UUID) *string {
	s := classID.String()
	return &s
}

/* ===================== Directory ===================== */

// Directory: lookup table id & nama untuk sekumpulan kelas.
type Directory struct {
	classes []classModel.ClassModel
	byID    map[uuid.UUID]int
	byName  map[string][]int
}

func NewDirectory(classes []classModel.ClassModel) *Directory {
	d := &Directory{
		classes: classes,
		byID:    make(map[uuid.UUID]int, len(classes)),
		byName:  make(map[string][]int, len(classes)),
	}
	for i, c := range classes {
		d.byID[c.ID] = i
		d.byName[c.Name] = append(d.byName[c.Name], i)
	}
	return d
}

func (d *Directory) Len() int { return len(d.classes) }

func (d *Directory) Classes() []classModel.ClassModel { return d.classes }

func (d *Directory) Contains(id uuid.UUID) bool {
	_, ok := d.byID[id]
	return ok
}

func (d *Directory) Get(id uuid.UUID) (classModel.ClassModel, bool) {
	i, ok := d.byID[id]
	if !ok {
		return classModel.ClassModel{}, false
	}
	return d.classes[i], true
}

// Resolve mengembalikan id kanonik. ByName hanya berhasil kalau namanya unik di directory.
func (d *Directory) Resolve(ref ClassRef) (uuid.UUID, bool) {
	switch r := ref.(type) {
	case ByID:
		if d.Contains(r.ID) {
			return r.ID, true
		}
	case ByName:
		if idx := d.byName[r.Name]; len(idx) == 1 {
			return d.classes[idx[0]].ID, true
		}
	}
	return uuid.Nil, false
}

// Matches: ref menunjuk salah satu kelas di directory (id atau nama).
func (d *Directory) Matches(ref ClassRef) bool {
	switch r := ref.(type) {
	case ByID:
		return d.Contains(r.ID)
	case ByName:
		return len(d.byName[r.Name]) > 0
	}
	return false
}

func (d *Directory) MatchesRaw(raw *string) bool {
	ref, ok := ParseClassRef(raw)
	return ok && d.Matches(ref)
}

// Names: nama kelas sesuai urutan input.
func (d *Directory) Names() []string {
	out := make([]string, 0, len(d.classes))
	for _, c := range d.classes {
		out = append(out, c.Name)
	}
	return out
}

func (d *Directory) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(d.classes))
	for _, c := range d.classes {
		out = append(out, c.ID)
	}
	return out
}
