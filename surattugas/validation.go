package surattugas

import (
	"errors"
	"fmt"

	"suratgen/bizerror"

	"github.com/go-playground/validator/v10"
)

var draftValidator = validator.New()

// ValidateDraft enforces the submission invariants locally, before any
// network call is made.
func ValidateDraft(d *Draft) error {
	if err := draftValidator.Struct(d); err != nil {
		return &bizerror.ErrValidationRejected{Cause: err}
	}

	for i := range d.Petugas {
		if d.Petugas[i].Jabatan() == "" {
			return &bizerror.ErrValidationRejected{
				Cause: fmt.Errorf("petugas %q has no role label for this assignment", d.Petugas[i].Name),
			}
		}
	}

	if d.TanggalSurat.IsZero() {
		return &bizerror.ErrValidationRejected{Cause: errors.New("tanggal surat is required")}
	}
	if d.TanggalMulai.IsZero() || d.TanggalSelesai.IsZero() {
		return &bizerror.ErrValidationRejected{Cause: errors.New("tanggal mulai and tanggal selesai are required")}
	}
	if d.TanggalMulai.Before(d.TanggalSurat.Time) {
		return &bizerror.ErrValidationRejected{Cause: errors.New("tanggal mulai must not precede tanggal surat")}
	}
	if d.TanggalSelesai.Before(d.TanggalMulai.Time) {
		return &bizerror.ErrValidationRejected{Cause: errors.New("tanggal selesai must not precede tanggal mulai")}
	}
	return nil
}
