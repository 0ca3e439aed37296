package surattugas

import (
	"context"
	"sync"
	"time"

	"suratgen/bizerror"
	"suratgen/client/records"
	"suratgen/common"
	"suratgen/docx"
	"suratgen/session"

	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

type State string

const (
	StateIdle                State = "Idle"
	StateNumberRequested     State = "NumberRequested"
	StatePersisted           State = "Persisted"
	StateArtifactAttempted   State = "ArtifactAttempted"
	StateRendered            State = "Rendered"
	StateDelivered           State = "Delivered"
	StateAbortedBeforePersist State = "AbortedBeforePersist"
	StateAbortedAfterPersist  State = "AbortedAfterPersist"
)

// RecordsTraits is the slice of the records client the pipeline needs.
type RecordsTraits interface {
	GetCurrentNumber(s *session.Session, month time.Month, year int) (int, error)
	CreateSuratTugas(s *session.Session, creation *records.SuratTugasCreation) (*records.CreationResult, error)
	GetSuratTugasByID(s *session.Session, id string) (*records.SuratTugasDetail, error)
}

// ArtifactTraits is the slice of the artifact generator the pipeline needs.
type ArtifactTraits interface {
	GenerateAndStore(ctx context.Context, url, documentID string) (string, error)
	Retrieve(documentID string) ([]byte, error)
	GenerateInline(url string) (string, error)
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	State    State
	RecordID string
	Number   DocumentNumber
	Document []byte
	Filename string
	Warnings []string
}

type Pipeline struct {
	Records   RecordsTraits
	Artifacts ArtifactTraits
	Config    *Config

	// LoadTemplate and Render are seams for tests; they default to the
	// docx package.
	LoadTemplate func(pathOrURL string) ([]byte, error)
	Render       func(template []byte, fields docx.FieldMap, image *docx.InlineImage) ([]byte, error)

	idWorker *sonyflake.Sonyflake

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewPipeline(recordsClient RecordsTraits, artifacts ArtifactTraits, cfg *Config) *Pipeline {
	return &Pipeline{
		Records:      recordsClient,
		Artifacts:    artifacts,
		Config:       cfg,
		LoadTemplate: docx.LoadTemplate,
		Render:       docx.Render,
		idWorker:     sonyflake.NewSonyflake(sonyflake.Settings{}),
		inFlight:     map[string]bool{},
	}
}

// acquire takes the single-flight slot for a draft. At most one pipeline run
// may be in flight per draft.
func (p *Pipeline) acquire(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight[key] {
		return bizerror.ErrSubmissionInFlight
	}
	p.inFlight[key] = true
	return nil
}

func (p *Pipeline) release(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, key)
}

// Generate runs the full pipeline for a draft:
// number allocation -> record persistence -> QR artifact -> render.
// Failures before persistence abort with no partial state; artifact failure
// degrades with a warning; render failure after persistence reports the
// persisted record id for out-of-band retry.
func (p *Pipeline) Generate(s *session.Session, draft *Draft) (*Outcome, error) {
	if err := ValidateDraft(draft); err != nil {
		return &Outcome{State: StateIdle}, err
	}

	if err := p.acquire(draft.MasterDocumentListID); err != nil {
		return &Outcome{State: StateIdle}, err
	}
	defer p.release(draft.MasterDocumentListID)

	runID := common.NextId(p.idWorker)
	log := logrus.WithFields(logrus.Fields{"run": runID, "jenis": draft.Jenis})

	outcome := &Outcome{State: StateNumberRequested}

	month := draft.TanggalSurat.Month()
	year := draft.TanggalSurat.Year()
	seq, err := p.Records.GetCurrentNumber(s, month, year)
	if err != nil {
		outcome.State = StateAbortedBeforePersist
		return outcome, err
	}
	outcome.Number = DocumentNumber{Seq: seq, Month: month, Year: year}
	log.WithField("nomor", outcome.Number.String()).Info("document number allocated")

	creation := creationFromDraft(draft)
	created, err := p.Records.CreateSuratTugas(s, creation)
	if err != nil {
		outcome.State = StateAbortedBeforePersist
		return outcome, err
	}
	outcome.State = StatePersisted
	outcome.RecordID = created.ID
	log.WithField("recordId", created.ID).Info("surat tugas record persisted")

	qrValue, image, warnings := p.attemptArtifact(s, created.ID)
	outcome.State = StateArtifactAttempted
	outcome.Warnings = warnings

	document, err := p.renderDocument(qrValue, image, BuildFieldMap(draft, outcome.Number, qrValue, p.Config))
	if err != nil {
		outcome.State = StateAbortedAfterPersist
		return outcome, &bizerror.ErrGenerationIncomplete{RecordID: created.ID, Cause: err}
	}

	outcome.State = StateRendered
	outcome.Document = document
	outcome.Filename = outcome.Number.Filename()
	log.WithField("bytes", len(document)).Info("surat tugas document rendered")
	return outcome, nil
}

// Regenerate re-runs the post-persistence phases against an existing record,
// making artifact and render independently retriable.
func (p *Pipeline) Regenerate(s *session.Session, recordID string) (*Outcome, error) {
	detail, err := p.Records.GetSuratTugasByID(s, recordID)
	if err != nil {
		return &Outcome{State: StateIdle}, err
	}

	if err := p.acquire("regen:" + recordID); err != nil {
		return &Outcome{State: StateIdle}, err
	}
	defer p.release("regen:" + recordID)

	qrValue, image, warnings := p.attemptArtifact(s, detail.ID)

	fields, number := BuildFieldMapFromDetail(detail, qrValue, p.Config)
	outcome := &Outcome{State: StateArtifactAttempted, RecordID: detail.ID, Number: number, Warnings: warnings}

	document, err := p.renderDocument(qrValue, image, fields)
	if err != nil {
		outcome.State = StateAbortedAfterPersist
		return outcome, &bizerror.ErrGenerationIncomplete{RecordID: detail.ID, Cause: err}
	}
	outcome.State = StateRendered
	outcome.Document = document
	outcome.Filename = number.Filename()
	return outcome, nil
}

// attemptArtifact tries the stored QR first, then the inline fallback.
// Failure is never fatal; the letter goes out without its QR and the user is
// warned.
func (p *Pipeline) attemptArtifact(s *session.Session, recordID string) (qrValue string, image *docx.InlineImage, warnings []string) {
	url := p.Config.VerificationURL(recordID)

	ctx := s.Context
	if ctx == nil {
		ctx = context.Background()
	}
	path, err := p.Artifacts.GenerateAndStore(ctx, url, recordID)
	if err == nil {
		img, rerr := p.Artifacts.Retrieve(recordID)
		if rerr == nil {
			return path, &docx.InlineImage{Tag: "qrCode", Data: img, WidthPx: docx.QrImageSizePx, HeightPx: docx.QrImageSizePx}, nil
		}
		err = rerr
	}
	logrus.WithField("recordId", recordID).Warnf("QR artifact generation failed: %v", err)
	warnings = append(warnings, "kode QR verifikasi tidak dapat dibuat: "+err.Error())

	inline, ierr := p.Artifacts.GenerateInline(url)
	if ierr != nil {
		logrus.WithField("recordId", recordID).Warnf("inline QR fallback failed: %v", ierr)
		warnings = append(warnings, "dokumen diterbitkan tanpa kode QR")
		return "", nil, warnings
	}
	return inline, nil, warnings
}

func (p *Pipeline) renderDocument(qrValue string, image *docx.InlineImage, fields docx.FieldMap) ([]byte, error) {
	template, err := p.LoadTemplate(p.Config.TemplatePath)
	if err != nil {
		return nil, err
	}
	return p.Render(template, fields, image)
}

func creationFromDraft(d *Draft) *records.SuratTugasCreation {
	tim := make([]records.TimAssignment, 0, len(d.Petugas))
	for i := range d.Petugas {
		tim = append(tim, records.TimAssignment{
			PersonnelID: d.Petugas[i].ID,
			Role:        d.Petugas[i].Jabatan(),
		})
	}
	return &records.SuratTugasCreation{
		MasterDocumentListID: d.MasterDocumentListID,
		NamaPekerjaan:        d.Judul,
		DeskripsiPekerjaan:   d.Deskripsi,
		TanggalMulai:         d.TanggalMulai.ISO(),
		TanggalSelesai:       d.TanggalSelesai.ISO(),
		Lokasi:               d.Lokasi,
		ClientID:             d.Klien.ID,
		Type:                 d.Jenis,
		SignerID:             d.Penandatangan.ID,
		TanggalSuratTugas:    d.TanggalSurat.ISO(),
		CreatedBy:            d.CreatedBy,
		TimPenugasan:         tim,
	}
}
