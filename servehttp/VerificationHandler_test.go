package servehttp_test

import (
	"net/http"
	"net/http/httptest"

	"suratgen/bizerror"
	"suratgen/client/records"
	"suratgen/servehttp"
	"suratgen/session"
	"suratgen/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("VerificationHandler", func() {
	var (
		router   *gin.Engine
		recQuery *recordsQueryMock
	)

	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		recQuery = &recordsQueryMock{}
		servehttp.RegisterVerificationHandler(router, recQuery)
	})

	It("should report a valid document", func() {
		recQuery.GetSuratTugasByIDFunc = func(s *session.Session, id string) (*records.SuratTugasDetail, error) {
			Expect(id).To(Equal(testRecordUUID))
			return &records.SuratTugasDetail{
				ID:                testRecordUUID,
				NamaPekerjaan:     "Audit Laporan Keuangan",
				Type:              "proyek",
				TanggalSuratTugas: "2025-01-10",
				MasterDocumentList: records.MasterDocumentList{
					DocumentNumber: "007/STg/HC-SAR/I/2025",
					IsActive:       true,
				},
				Client: records.KlienSnapshot{Name: "PT Maju Bersama"},
				Signer: records.PersonnelSnapshot{Name: "Sinta Dewi"},
			}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/surat-tugas/"+testRecordUUID, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{
			"valid": true,
			"id": "` + testRecordUUID + `",
			"documentNumber": "007/STg/HC-SAR/I/2025",
			"namaPekerjaan": "Audit Laporan Keuangan",
			"type": "proyek",
			"tanggalSurat": "2025-01-10",
			"client": "PT Maju Bersama",
			"signer": "Sinta Dewi"
		}`))
	})

	It("should mark an inactive document invalid without hiding it", func() {
		recQuery.GetSuratTugasByIDFunc = func(s *session.Session, id string) (*records.SuratTugasDetail, error) {
			return &records.SuratTugasDetail{
				ID:                 testRecordUUID,
				MasterDocumentList: records.MasterDocumentList{IsActive: false},
			}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/surat-tugas/"+testRecordUUID, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"valid":false`))
	})

	It("should answer 404 for an unknown or forged id", func() {
		recQuery.GetSuratTugasByIDFunc = func(s *session.Session, id string) (*records.SuratTugasDetail, error) {
			return nil, bizerror.ErrNotFound
		}

		req := httptest.NewRequest(http.MethodGet, "/surat-tugas/forged-id", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)

		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"valid": false, "message": "dokumen tidak ditemukan atau tidak valid"}`))
	})
})
