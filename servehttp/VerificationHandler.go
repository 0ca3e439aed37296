package servehttp

import (
	"errors"
	"net/http"

	"suratgen/bizerror"
	"suratgen/session"

	"github.com/gin-gonic/gin"
)

// RegisterVerificationHandler serves the unauthenticated page behind the QR
// code: {appOrigin}/surat-tugas/{recordId} resolves the record and reports
// its validity.
func RegisterVerificationHandler(r *gin.Engine, recordsClient RecordsQueryTraits) {
	handler := &verificationHandler{records: recordsClient}
	r.GET("/surat-tugas/:id", handler.handleVerify)
}

type verificationHandler struct {
	records RecordsQueryTraits
}

func (h *verificationHandler) handleVerify(c *gin.Context) {
	id := c.Param("id")

	detail, err := h.records.GetSuratTugasByID(&session.Session{Context: c.Request.Context()}, id)
	if err != nil {
		if errors.Is(err, bizerror.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"valid":   false,
				"message": "dokumen tidak ditemukan atau tidak valid",
			})
			return
		}
		panic(err)
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":          detail.MasterDocumentList.IsActive,
		"id":             detail.ID,
		"documentNumber": detail.MasterDocumentList.DocumentNumber,
		"namaPekerjaan":  detail.NamaPekerjaan,
		"type":           detail.Type,
		"tanggalSurat":   detail.TanggalSuratTugas,
		"client":         detail.Client.Name,
		"signer":         detail.Signer.Name,
	})
}
