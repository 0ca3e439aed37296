package surattugas

import (
	"os"
	"time"

	"suratgen/client/records"
	"suratgen/docx"
)

// Signer is the fallback identity printed when a draft resolves no signer.
// Existing documents carry this exact identity, keep it configurable but
// stable.
type Signer struct {
	Name  string
	Role  string
	Email string
}

type Config struct {
	// AppOrigin is the public origin verification URLs are built on.
	AppOrigin string
	// TemplatePath locates the DOCX template (file path or HTTP URL).
	TemplatePath string
	DefaultSigner Signer
	DefaultTempat string
}

func ConfigFromEnv() *Config {
	cfg := &Config{
		AppOrigin:     os.Getenv("APP_ORIGIN"),
		TemplatePath:  os.Getenv("TEMPLATE_PATH"),
		DefaultTempat: "Kantor SAR",
		DefaultSigner: Signer{
			Name:  "Dr. H. Sony Devano, SE, Ak, SH, M.Ak, CA, BKP, CPA, CACP",
			Role:  "Managing Partner",
			Email: "sony.devano@sar-consulting.co.id",
		},
	}
	if cfg.AppOrigin == "" {
		cfg.AppOrigin = "http://localhost:8080"
	}
	if cfg.TemplatePath == "" {
		cfg.TemplatePath = "templates/template_surat_tugas.docx"
	}
	if name := os.Getenv("DEFAULT_SIGNER_NAME"); name != "" {
		cfg.DefaultSigner.Name = name
	}
	if role := os.Getenv("DEFAULT_SIGNER_ROLE"); role != "" {
		cfg.DefaultSigner.Role = role
	}
	if email := os.Getenv("DEFAULT_SIGNER_EMAIL"); email != "" {
		cfg.DefaultSigner.Email = email
	}
	return cfg
}

func (c *Config) VerificationURL(recordID string) string {
	return c.AppOrigin + "/surat-tugas/" + recordID
}

func perihalFor(jenis string) string {
	if jenis == JenisProyek {
		return "Proyek"
	}
	return "Perjalanan Dinas"
}

// BuildFieldMap transforms a validated draft into the template field set.
func BuildFieldMap(d *Draft, number DocumentNumber, qrValue string, cfg *Config) docx.FieldMap {
	rows := make([]docx.PetugasRow, 0, len(d.Petugas))
	for i := range d.Petugas {
		rows = append(rows, docx.PetugasRow{
			No:      i + 1,
			Nama:    d.Petugas[i].Name,
			Jabatan: d.Petugas[i].Jabatan(),
		})
	}

	signerName := cfg.DefaultSigner.Name
	signerJabatan := cfg.DefaultSigner.Role
	signerEmail := cfg.DefaultSigner.Email
	if d.Penandatangan != nil {
		if d.Penandatangan.Name != "" {
			signerName = d.Penandatangan.Name
		}
		if d.Penandatangan.JobTitle != "" {
			signerJabatan = d.Penandatangan.JobTitle
		} else if d.Penandatangan.Role != "" {
			signerJabatan = d.Penandatangan.Role
		}
		if d.Penandatangan.Email != "" {
			signerEmail = d.Penandatangan.Email
		}
	}

	namaKlien := ""
	if d.Klien != nil {
		namaKlien = d.Klien.Name
	}
	tempat := d.Lokasi
	if tempat == "" {
		tempat = cfg.DefaultTempat
	}

	var mulai, selesai *time.Time
	if !d.TanggalMulai.IsZero() {
		mulai = &d.TanggalMulai.Time
	}
	if !d.TanggalSelesai.IsZero() {
		selesai = &d.TanggalSelesai.Time
	}

	return docx.FieldMap{
		Values: map[string]string{
			"NOMOR":                number.Sequence(),
			"BULAN_ROMAWI":         docx.RomanMonth(int(number.Month)),
			"TAHUN":                number.YearString(),
			"TANGGAL_SURAT":        docx.FormatTanggal(d.TanggalSurat.Time),
			"PERIHAL":              perihalFor(d.Jenis),
			"URAIAN_PEKERJAAN":     d.Deskripsi,
			"NAMA_KLIEN":           namaKlien,
			"TEMPAT":               tempat,
			"HARI_TANGGAL":         docx.FormatRentang(mulai, selesai),
			"PENANDATANGAN_NAMA":   signerName,
			"PENANDATANGAN_JABATAN": signerJabatan,
			"PENANDATANGAN_EMAIL":  signerEmail,
		},
		Petugas:    rows,
		ImageTag:   "qrCode",
		ImageValue: qrValue,
	}
}

// BuildFieldMapFromDetail rebuilds the field set from an already-persisted
// record, for out-of-band regeneration.
func BuildFieldMapFromDetail(detail *records.SuratTugasDetail, qrValue string, cfg *Config) (docx.FieldMap, DocumentNumber) {
	tanggalSurat := parseISODate(detail.TanggalSuratTugas)
	number := DocumentNumber{
		Seq:   detail.MasterDocumentList.IndexNumber,
		Month: tanggalSurat.Month(),
		Year:  tanggalSurat.Year(),
	}

	rows := make([]docx.PetugasRow, 0, len(detail.TimPenugasan))
	for i, entry := range detail.TimPenugasan {
		jabatan := entry.Role
		if jabatan == "" {
			jabatan = entry.Personnel.JobTitle
		}
		if jabatan == "" {
			jabatan = entry.Personnel.Role
		}
		rows = append(rows, docx.PetugasRow{No: i + 1, Nama: entry.Personnel.Name, Jabatan: jabatan})
	}

	signerName := detail.Signer.Name
	if signerName == "" {
		signerName = cfg.DefaultSigner.Name
	}
	signerJabatan := detail.Signer.JobTitle
	if signerJabatan == "" {
		signerJabatan = detail.Signer.Role
	}
	if signerJabatan == "" {
		signerJabatan = cfg.DefaultSigner.Role
	}
	signerEmail := detail.Signer.Email
	if signerEmail == "" {
		signerEmail = cfg.DefaultSigner.Email
	}

	tempat := detail.Lokasi
	if tempat == "" {
		tempat = cfg.DefaultTempat
	}

	var mulai, selesai *time.Time
	if t := parseISODate(detail.TanggalMulai); !t.IsZero() {
		mulai = &t
	}
	if t := parseISODate(detail.TanggalSelesai); !t.IsZero() {
		selesai = &t
	}

	return docx.FieldMap{
		Values: map[string]string{
			"NOMOR":                number.Sequence(),
			"BULAN_ROMAWI":         docx.RomanMonth(int(number.Month)),
			"TAHUN":                number.YearString(),
			"TANGGAL_SURAT":        docx.FormatTanggal(tanggalSurat),
			"PERIHAL":              perihalFor(detail.Type),
			"URAIAN_PEKERJAAN":     detail.DeskripsiPekerjaan,
			"NAMA_KLIEN":           detail.Client.Name,
			"TEMPAT":               tempat,
			"HARI_TANGGAL":         docx.FormatRentang(mulai, selesai),
			"PENANDATANGAN_NAMA":   signerName,
			"PENANDATANGAN_JABATAN": signerJabatan,
			"PENANDATANGAN_EMAIL":  signerEmail,
		},
		Petugas:    rows,
		ImageTag:   "qrCode",
		ImageValue: qrValue,
	}, number
}

func parseISODate(s string) time.Time {
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t
		}
	}
	return time.Time{}
}
