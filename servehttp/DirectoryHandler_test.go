package servehttp_test

import (
	"net/http"
	"net/http/httptest"

	"suratgen/bizerror"
	"suratgen/client/directory"
	"suratgen/servehttp"
	"suratgen/session"
	"suratgen/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type directoryMock struct {
	SearchPersonnelFunc  func(s *session.Session, q string) ([]directory.Personnel, error)
	GetPersonnelByIDFunc func(s *session.Session, id string) (*directory.Personnel, error)
	SearchClientsFunc    func(s *session.Session, q string) ([]directory.Klien, error)
	GetClientByIDFunc    func(s *session.Session, id string) (*directory.Klien, error)
	ListClientTypesFunc  func(s *session.Session) ([]string, error)
}

func (m *directoryMock) SearchPersonnel(s *session.Session, q string) ([]directory.Personnel, error) {
	return m.SearchPersonnelFunc(s, q)
}
func (m *directoryMock) GetPersonnelByID(s *session.Session, id string) (*directory.Personnel, error) {
	return m.GetPersonnelByIDFunc(s, id)
}
func (m *directoryMock) SearchClients(s *session.Session, q string) ([]directory.Klien, error) {
	return m.SearchClientsFunc(s, q)
}
func (m *directoryMock) GetClientByID(s *session.Session, id string) (*directory.Klien, error) {
	return m.GetClientByIDFunc(s, id)
}
func (m *directoryMock) ListClientTypes(s *session.Session) ([]string, error) {
	return m.ListClientTypesFunc(s)
}

var _ = Describe("DirectoryHandler", func() {
	var (
		router *gin.Engine
		dir    *directoryMock
	)

	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		dir = &directoryMock{}
		servehttp.RegisterDirectoryHandler(router, dir)
	})

	It("should serve the personnel search", func() {
		dir.SearchPersonnelFunc = func(s *session.Session, q string) ([]directory.Personnel, error) {
			Expect(q).To(Equal("budi"))
			return []directory.Personnel{{ID: "p-1", Name: "Budi Santoso", JobTitle: "Auditor"}}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/identities?q=budi", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Budi Santoso"))
		Expect(body).To(ContainSubstring(`"total":1`))
	})

	It("should serve the client detail", func() {
		dir.GetClientByIDFunc = func(s *session.Session, id string) (*directory.Klien, error) {
			Expect(id).To(Equal("c-1"))
			return &directory.Klien{ID: "c-1", Name: "PT Maju Bersama"}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/clients/c-1", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("PT Maju Bersama"))
	})

	It("should serve the client types", func() {
		dir.ListClientTypesFunc = func(s *session.Session) ([]string, error) {
			return []string{"korporasi", "pemerintah"}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/clients/types", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`["korporasi", "pemerintah"]`))
	})

	It("should map an unknown personnel to 404", func() {
		dir.GetPersonnelByIDFunc = func(s *session.Session, id string) (*directory.Personnel, error) {
			return nil, bizerror.ErrNotFound
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/identities/missing", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)

		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(ContainSubstring("common.record_not_found"))
	})
})
