package servehttp_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"suratgen/bizerror"
	"suratgen/client/records"
	"suratgen/servehttp"
	"suratgen/session"
	"suratgen/surattugas"
	"suratgen/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type pipelineMock struct {
	GenerateFunc   func(s *session.Session, draft *surattugas.Draft) (*surattugas.Outcome, error)
	RegenerateFunc func(s *session.Session, recordID string) (*surattugas.Outcome, error)
}

func (m *pipelineMock) Generate(s *session.Session, draft *surattugas.Draft) (*surattugas.Outcome, error) {
	return m.GenerateFunc(s, draft)
}
func (m *pipelineMock) Regenerate(s *session.Session, recordID string) (*surattugas.Outcome, error) {
	return m.RegenerateFunc(s, recordID)
}

type recordsQueryMock struct {
	GetCurrentNumberFunc  func(s *session.Session, month time.Month, year int) (int, error)
	GetSuratTugasByIDFunc func(s *session.Session, id string) (*records.SuratTugasDetail, error)
	ListSuratTugasFunc    func(s *session.Session) ([]records.SuratTugasDetail, error)
}

func (m *recordsQueryMock) GetCurrentNumber(s *session.Session, month time.Month, year int) (int, error) {
	return m.GetCurrentNumberFunc(s, month, year)
}
func (m *recordsQueryMock) GetSuratTugasByID(s *session.Session, id string) (*records.SuratTugasDetail, error) {
	return m.GetSuratTugasByIDFunc(s, id)
}
func (m *recordsQueryMock) ListSuratTugas(s *session.Session) ([]records.SuratTugasDetail, error) {
	return m.ListSuratTugasFunc(s)
}

type artifactServeMock struct {
	GenerateAndStoreFunc func(ctx context.Context, url, documentID string) (string, error)
	RetrieveFunc         func(documentID string) ([]byte, error)
}

func (m *artifactServeMock) GenerateAndStore(ctx context.Context, url, documentID string) (string, error) {
	return m.GenerateAndStoreFunc(ctx, url, documentID)
}
func (m *artifactServeMock) Retrieve(documentID string) ([]byte, error) {
	return m.RetrieveFunc(documentID)
}

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
const testRecordUUID = "0a8f9b1c-2d3e-4f50-8162-73849a5b6c7d"

var _ = Describe("SuratTugasHandler", func() {
	var (
		router    *gin.Engine
		pipeline  *pipelineMock
		recQuery  *recordsQueryMock
		artifacts *artifactServeMock
	)

	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		pipeline = &pipelineMock{}
		recQuery = &recordsQueryMock{}
		artifacts = &artifactServeMock{}
		cfg := &surattugas.Config{AppOrigin: "https://letters.example.id", DefaultTempat: "Kantor SAR"}
		servehttp.RegisterSuratTugasHandler(router, pipeline, recQuery, artifacts, cfg)
	})

	Describe("handleGenerate", func() {
		It("should deliver the rendered document with its metadata headers", func() {
			pipeline.GenerateFunc = func(s *session.Session, draft *surattugas.Draft) (*surattugas.Outcome, error) {
				Expect(draft.Judul).To(Equal("Audit Laporan Keuangan"))
				number := surattugas.DocumentNumber{Seq: 7, Month: time.January, Year: 2025}
				return &surattugas.Outcome{
					State:    surattugas.StateRendered,
					RecordID: testRecordUUID,
					Number:   number,
					Document: []byte("docx-bytes"),
					Filename: number.Filename(),
				}, nil
			}

			payload := `{"judul": "Audit Laporan Keuangan", "jenis": "proyek"}`
			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/generate", bytes.NewBufferString(payload))
			status, body, resp := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(Equal("docx-bytes"))
			Expect(resp.Get("Content-Type")).To(Equal(docxContentType))
			Expect(resp.Get("Content-Disposition")).To(Equal(`attachment; filename="Surat_Tugas_007_STg_HC-SAR_I_2025.docx"`))
			Expect(resp.Get("X-Record-Id")).To(Equal(testRecordUUID))
			Expect(resp.Get("X-Document-Number")).To(Equal("007/STg/HC-SAR/I/2025"))
			Expect(resp.Get("X-Warnings")).To(BeEmpty())
		})

		It("should surface degradation warnings in a header", func() {
			pipeline.GenerateFunc = func(s *session.Session, draft *surattugas.Draft) (*surattugas.Outcome, error) {
				return &surattugas.Outcome{
					State:    surattugas.StateRendered,
					RecordID: testRecordUUID,
					Number:   surattugas.DocumentNumber{Seq: 7, Month: time.January, Year: 2025},
					Document: []byte("docx-bytes"),
					Filename: "Surat_Tugas_007_STg_HC-SAR_I_2025.docx",
					Warnings: []string{"kode QR verifikasi tidak dapat dibuat: oss unreachable"},
				}, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/generate", bytes.NewBufferString(`{}`))
			status, _, resp := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusOK))
			Expect(resp.Get("X-Warnings")).To(ContainSubstring("kode QR verifikasi tidak dapat dibuat"))
		})

		It("should reject an invalid draft with 400", func() {
			pipeline.GenerateFunc = func(s *session.Session, draft *surattugas.Draft) (*surattugas.Outcome, error) {
				return &surattugas.Outcome{State: surattugas.StateIdle},
					&bizerror.ErrValidationRejected{Cause: errors.New("petugas roster must not be empty")}
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/generate", bytes.NewBufferString(`{}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code": "surat_tugas.validation_rejected",
				"message": "petugas roster must not be empty", "data": null}`))
		})

		It("should answer 409 when a submission is already in flight", func() {
			pipeline.GenerateFunc = func(s *session.Session, draft *surattugas.Draft) (*surattugas.Outcome, error) {
				return &surattugas.Outcome{State: surattugas.StateIdle}, bizerror.ErrSubmissionInFlight
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/generate", bytes.NewBufferString(`{}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusConflict))
			Expect(body).To(ContainSubstring("surat_tugas.submission_in_flight"))
		})

		It("should answer 409 with the record id when generation is incomplete", func() {
			pipeline.GenerateFunc = func(s *session.Session, draft *surattugas.Draft) (*surattugas.Outcome, error) {
				return &surattugas.Outcome{State: surattugas.StateAbortedAfterPersist, RecordID: testRecordUUID},
					&bizerror.ErrGenerationIncomplete{RecordID: testRecordUUID, Cause: errors.New("render failed")}
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/generate", bytes.NewBufferString(`{}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusConflict))
			Expect(body).To(ContainSubstring("surat_tugas.generation_incomplete"))
			Expect(body).To(ContainSubstring(testRecordUUID))
		})

		It("should map an upstream failure to 502", func() {
			pipeline.GenerateFunc = func(s *session.Session, draft *surattugas.Draft) (*surattugas.Outcome, error) {
				return &surattugas.Outcome{State: surattugas.StateAbortedBeforePersist},
					&bizerror.ErrUpstreamUnavailable{Cause: errors.New("dial tcp: connection refused")}
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/generate", bytes.NewBufferString(`{}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusBadGateway))
			Expect(body).To(ContainSubstring("upstream.unavailable"))
		})
	})

	Describe("handleRegenerate", func() {
		It("should reject a non-UUID record id", func() {
			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/not-a-uuid/regenerate", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(ContainSubstring("common.bad_param"))
		})

		It("should deliver the regenerated document", func() {
			pipeline.RegenerateFunc = func(s *session.Session, recordID string) (*surattugas.Outcome, error) {
				Expect(recordID).To(Equal(testRecordUUID))
				return &surattugas.Outcome{
					State:    surattugas.StateRendered,
					RecordID: recordID,
					Number:   surattugas.DocumentNumber{Seq: 15, Month: time.February, Year: 2025},
					Document: []byte("docx-bytes"),
					Filename: "Surat_Tugas_015_STg_HC-SAR_II_2025.docx",
				}, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/"+testRecordUUID+"/regenerate", nil)
			status, body, resp := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(Equal("docx-bytes"))
			Expect(resp.Get("X-Document-Number")).To(Equal("015/STg/HC-SAR/II/2025"))
		})
	})

	Describe("handleCurrentNumber", func() {
		It("should answer the allocated number", func() {
			recQuery.GetCurrentNumberFunc = func(s *session.Session, month time.Month, year int) (int, error) {
				Expect(month).To(Equal(time.January))
				Expect(year).To(Equal(2025))
				return 7, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/surat-tugas/current-number?month=1&year=2025", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`{"currentNumber": 7}`))
		})

		It("should reject an out-of-range month", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/surat-tugas/current-number?month=13&year=2025", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(ContainSubstring("month must be 1-12"))
		})
	})

	Describe("handleList", func() {
		It("should answer the paged record list", func() {
			recQuery.ListSuratTugasFunc = func(s *session.Session) ([]records.SuratTugasDetail, error) {
				return []records.SuratTugasDetail{{ID: testRecordUUID, NamaPekerjaan: "Audit Laporan Keuangan"}}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/surat-tugas", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`"total":1`))
			Expect(body).To(ContainSubstring("Audit Laporan Keuangan"))
		})
	})

	Describe("handleQrImage", func() {
		It("should serve stored artifact bytes as PNG", func() {
			artifacts.RetrieveFunc = func(documentID string) ([]byte, error) {
				Expect(documentID).To(Equal(testRecordUUID))
				return []byte("png-bytes"), nil
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/surat-tugas/qr-image/"+testRecordUUID, nil)
			status, body, resp := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(Equal("png-bytes"))
			Expect(resp.Get("Content-Type")).To(Equal("image/png"))
			Expect(resp.Get("Cache-Control")).To(Equal("public, max-age=3600"))
		})

		It("should answer 404 for a missing artifact", func() {
			artifacts.RetrieveFunc = func(documentID string) ([]byte, error) {
				return nil, bizerror.ErrArtifactNotFound
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/surat-tugas/qr-image/"+testRecordUUID, nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusNotFound))
			Expect(body).To(ContainSubstring("artifact.not_found"))
		})

		It("should reject a non-UUID document id", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/surat-tugas/qr-image/not-a-uuid", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("handleGenerateQr", func() {
		It("should store the QR and answer its serving path", func() {
			artifacts.GenerateAndStoreFunc = func(ctx context.Context, url, documentID string) (string, error) {
				Expect(url).To(Equal("https://letters.example.id/surat-tugas/" + testRecordUUID))
				return "/v1/surat-tugas/qr-image/" + documentID, nil
			}

			payload := `{"url": "https://letters.example.id/surat-tugas/` + testRecordUUID + `",
				"documentId": "` + testRecordUUID + `"}`
			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/qr", bytes.NewBufferString(payload))
			status, body, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`{"success": true, "path": "/v1/surat-tugas/qr-image/` + testRecordUUID + `"}`))
		})

		It("should reject a request without a url", func() {
			req := httptest.NewRequest(http.MethodPost, "/v1/surat-tugas/qr",
				bytes.NewBufferString(`{"documentId": "`+testRecordUUID+`"}`))
			status, _, _ := testinfra.ExecuteRequest(req, router)

			Expect(status).To(Equal(http.StatusBadRequest))
		})
	})
})
