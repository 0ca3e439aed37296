// Package records is the client of the backend system of record for surat
// tugas documents. Document numbers and record ids are allocated by the
// backend; this client never invents either.
package records

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"suratgen/bizerror"
	"suratgen/client/rest"
	"suratgen/session"
)

const ISODate = "2006-01-02"

type Client struct {
	invoker *rest.Invoker
}

func NewClient(baseURL string) *Client {
	return &Client{invoker: rest.NewInvoker(baseURL)}
}

func NewClientFromEnv() *Client {
	baseURL := os.Getenv("RECORDS_API_URL")
	if baseURL == "" {
		baseURL = "https://api.centri.id"
	}
	return NewClient(baseURL)
}

// SuratTugasCreation is the create DTO the backend expects. Dates are ISO
// calendar dates without a time component.
type SuratTugasCreation struct {
	MasterDocumentListID string          `json:"masterDocumentListId"`
	NamaPekerjaan        string          `json:"namaPekerjaan"`
	DeskripsiPekerjaan   string          `json:"deskripsiPekerjaan"`
	TanggalMulai         string          `json:"tanggalMulai"`
	TanggalSelesai       string          `json:"tanggalSelesai"`
	Lokasi               string          `json:"lokasi"`
	ClientID             string          `json:"clientId"`
	Type                 string          `json:"type"`
	SignerID             string          `json:"signerId"`
	TanggalSuratTugas    string          `json:"tanggalSuratTugas"`
	CreatedBy            string          `json:"createdBy"`
	TimPenugasan         []TimAssignment `json:"timPenugasan"`
}

type TimAssignment struct {
	PersonnelID string `json:"personnelId"`
	Role        string `json:"role"`
}

type CreationResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type MasterDocumentList struct {
	ID                     string `json:"id"`
	DocumentNumber         string `json:"documentNumber"`
	DocumentExternalNumber string `json:"documentExternalNumber"`
	DocumentName           string `json:"documentName"`
	DocumentLegalDate      string `json:"documentLegalDate"`
	IndexNumber            int    `json:"indexNumber"`
	DocumentStatus         string `json:"documentStatus"`
	IsActive               bool   `json:"isActive"`
	CreatedAt              string `json:"createdAt"`
	UpdatedAt              string `json:"updatedAt"`
}

type KlienSnapshot struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Group           string `json:"group"`
	ContactName     string `json:"contact_name"`
	ContactPosition string `json:"contact_position"`
	ContactEmail    string `json:"contact_email"`
	ContactPhone    string `json:"contact_phone"`
	Status          string `json:"status"`
	PriorityNumber  int    `json:"priority_number"`
	IsWapu          bool   `json:"isWapu"`
}

type PersonnelSnapshot struct {
	ID                string `json:"id"`
	ExternalID        string `json:"externalId"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	Department        string `json:"department"`
	JobTitle          string `json:"jobTitle"`
	PreferredUsername string `json:"preferredUsername"`
	IsActive          bool   `json:"isActive"`
	Status            string `json:"status"`
	Role              string `json:"role"`
}

type TimPenugasanEntry struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	CreatedAt string            `json:"createdAt"`
	Personnel PersonnelSnapshot `json:"personnel"`
}

type SuratTugasDetail struct {
	ID                 string              `json:"id"`
	NamaPekerjaan      string              `json:"namaPekerjaan"`
	DeskripsiPekerjaan string              `json:"deskripsiPekerjaan"`
	TanggalMulai       string              `json:"tanggalMulai"`
	TanggalSelesai     string              `json:"tanggalSelesai"`
	Lokasi             string              `json:"lokasi"`
	Type               string              `json:"type"`
	TanggalSuratTugas  string              `json:"tanggalSuratTugas"`
	CreatedAt          string              `json:"createdAt"`
	UpdatedAt          string              `json:"updatedAt"`
	CreatedBy          string              `json:"createdBy"`
	UpdatedBy          string              `json:"updatedBy"`
	MasterDocumentList MasterDocumentList  `json:"masterDocumentList"`
	Client             KlienSnapshot       `json:"client"`
	Signer             PersonnelSnapshot   `json:"signer"`
	TimPenugasan       []TimPenugasanEntry `json:"timPenugasan"`
}

// GetCurrentNumber fetches the next sequence number for the (month, year)
// bucket. The backend answers either a bare integer or a small wrapper
// object; both forms are accepted.
func (c *Client) GetCurrentNumber(s *session.Session, month time.Month, year int) (int, error) {
	query := url.Values{}
	query.Set("month", strconv.Itoa(int(month)))
	query.Set("year", strconv.Itoa(year))

	raw, err := c.invoker.DoRaw(s, http.MethodGet, "/surat-tugas/current-number", query, nil)
	if err != nil {
		return 0, mapUpstreamError(err)
	}

	var number int
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}
	wrapper := struct {
		CurrentNumber *int `json:"currentNumber"`
		Data          *int `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		if wrapper.CurrentNumber != nil {
			return *wrapper.CurrentNumber, nil
		}
		if wrapper.Data != nil {
			return *wrapper.Data, nil
		}
	}
	return 0, &bizerror.ErrUpstreamUnavailable{Cause: rest.NewErrHttpInvoke(nil, "", nil, string(raw), nil)}
}

func (c *Client) CreateSuratTugas(s *session.Session, creation *SuratTugasCreation) (*CreationResult, error) {
	result := CreationResult{}
	err := c.invoker.DoJSON(s, http.MethodPost, "/surat-tugas/create", nil, creation, &result)
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	return &result, nil
}

func (c *Client) GetSuratTugasByID(s *session.Session, id string) (*SuratTugasDetail, error) {
	detail := SuratTugasDetail{}
	err := c.invoker.DoJSON(s, http.MethodGet, "/surat-tugas/get-by-id/"+url.PathEscape(id), nil, nil, &detail)
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	return &detail, nil
}

func (c *Client) ListSuratTugas(s *session.Session) ([]SuratTugasDetail, error) {
	list := []SuratTugasDetail{}
	err := c.invoker.DoJSON(s, http.MethodGet, "/surat-tugas/get-all", nil, nil, &list)
	if err != nil {
		return nil, mapUpstreamError(err)
	}
	return list, nil
}

func mapUpstreamError(err error) error {
	if httpErr, ok := err.(*rest.ErrHttpInvoke); ok {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			return bizerror.ErrNotFound
		case http.StatusUnauthorized:
			return bizerror.ErrUnauthenticated
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return &bizerror.ErrValidationRejected{Cause: httpErr}
		}
	}
	return &bizerror.ErrUpstreamUnavailable{Cause: err}
}
