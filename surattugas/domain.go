// Package surattugas holds the assignment letter domain: the draft a user
// submits, the document numbering scheme, and the generation pipeline that
// turns a draft into a persisted record plus a rendered DOCX.
package surattugas

import (
	"fmt"
	"strings"
	"time"

	"suratgen/docx"
)

const (
	JenisProyek          = "proyek"
	JenisPerjalananDinas = "perjalanan_dinas"
)

// Date is an ISO calendar date (no time component) in JSON.
type Date struct {
	time.Time
}

const isoDate = "2006-01-02"

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(isoDate) + `"`), nil
}

func (d Date) ISO() string {
	return d.Format(isoDate)
}

type TeamMember struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	Position       string `json:"position"`
	AssignmentRole string `json:"assignmentRole"`
	JobTitle       string `json:"jobTitle"`
}

// Jabatan is the role label rendered on the letter: the assignment-specific
// role, else the general position, else the general role.
func (m *TeamMember) Jabatan() string {
	if m.AssignmentRole != "" {
		return m.AssignmentRole
	}
	if m.Position != "" {
		return m.Position
	}
	if m.JobTitle != "" {
		return m.JobTitle
	}
	return m.Role
}

type Klien struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

// Draft is the submitted form state, consumed read-only by the pipeline.
type Draft struct {
	Jenis                string       `json:"jenis" validate:"required,oneof=proyek perjalanan_dinas"`
	Judul                string       `json:"judul" validate:"required"`
	Deskripsi            string       `json:"deskripsi"`
	Petugas              []TeamMember `json:"petugas" validate:"required,min=1,dive"`
	Penandatangan        *TeamMember  `json:"penandatangan" validate:"required"`
	TanggalSurat         Date         `json:"tanggalSurat"`
	TanggalMulai         Date         `json:"tanggalMulai"`
	TanggalSelesai       Date         `json:"tanggalSelesai"`
	Lokasi               string       `json:"lokasi"`
	Klien                *Klien       `json:"klien" validate:"required"`
	Catatan              string       `json:"catatan"`
	Prioritas            string       `json:"prioritas" validate:"omitempty,oneof=low medium high urgent"`
	MasterDocumentListID string       `json:"masterDocumentListId" validate:"required"`
	CreatedBy            string       `json:"createdBy" validate:"required"`
}

// DocumentNumber is the per-(month, year) sequence value assigned by the
// backend. The backend guarantees uniqueness and monotonicity; this type
// only formats.
type DocumentNumber struct {
	Seq   int
	Month time.Month
	Year  int
}

func (n DocumentNumber) Sequence() string {
	return fmt.Sprintf("%03d", n.Seq)
}

func (n DocumentNumber) YearString() string {
	return fmt.Sprintf("%d", n.Year)
}

func (n DocumentNumber) String() string {
	return fmt.Sprintf("%03d/STg/HC-SAR/%s/%d", n.Seq, docx.RomanMonth(int(n.Month)), n.Year)
}

// Filename is the delivered attachment name, slashes replaced so the number
// survives as a file name.
func (n DocumentNumber) Filename() string {
	return "Surat_Tugas_" + strings.ReplaceAll(n.String(), "/", "_") + ".docx"
}
