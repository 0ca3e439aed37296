package bizerror

import (
	"errors"
	"net/http"
)

var ErrUnauthenticated = errors.New("unauthenticated")
var ErrNotFound = errors.New("record not found")
var ErrArtifactNotFound = errors.New("artifact not found")
var ErrSubmissionInFlight = errors.New("submission already in flight")

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrValidationRejected covers both local draft invariant violations and a
// payload shape rejection by the records backend.
type ErrValidationRejected struct {
	Cause error
}

func (e *ErrValidationRejected) Unwrap() error {
	return e.Cause
}
func (e *ErrValidationRejected) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "surat_tugas.validation_rejected"
}
func (e *ErrValidationRejected) Respond() *BizErrorDetail {
	message := "surat_tugas.validation_rejected"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "surat_tugas.validation_rejected", Message: message}
}

// ErrUpstreamUnavailable marks a network or non-success failure of the
// records backend or the directory service. Fatal before persistence.
type ErrUpstreamUnavailable struct {
	Cause error
}

func (e *ErrUpstreamUnavailable) Unwrap() error {
	return e.Cause
}
func (e *ErrUpstreamUnavailable) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "upstream.unavailable"
}
func (e *ErrUpstreamUnavailable) Respond() *BizErrorDetail {
	message := "upstream.unavailable"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadGateway, Code: "upstream.unavailable", Message: message}
}

type ErrTemplateLoad struct {
	Cause error
}

func (e *ErrTemplateLoad) Unwrap() error {
	return e.Cause
}
func (e *ErrTemplateLoad) Error() string {
	if e.Cause != nil {
		return "template load failed: " + e.Cause.Error()
	}
	return "template load failed"
}
func (e *ErrTemplateLoad) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusInternalServerError, Code: "docx.template_load_failed", Message: e.Error()}
}

type ErrRender struct {
	Cause error
}

func (e *ErrRender) Unwrap() error {
	return e.Cause
}
func (e *ErrRender) Error() string {
	if e.Cause != nil {
		return "document render failed: " + e.Cause.Error()
	}
	return "document render failed"
}
func (e *ErrRender) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusInternalServerError, Code: "docx.render_failed", Message: e.Error()}
}

// ErrGenerationIncomplete is raised when the record has already been
// persisted but the document could not be produced. The record id is
// returned so the caller can retry generation out-of-band.
type ErrGenerationIncomplete struct {
	RecordID string
	Cause    error
}

func (e *ErrGenerationIncomplete) Unwrap() error {
	return e.Cause
}
func (e *ErrGenerationIncomplete) Error() string {
	message := "surat tugas record " + e.RecordID + " was created but the document could not be generated"
	if e.Cause != nil {
		message = message + ": " + e.Cause.Error()
	}
	return message
}
func (e *ErrGenerationIncomplete) Respond() *BizErrorDetail {
	return &BizErrorDetail{
		Status:  http.StatusConflict,
		Code:    "surat_tugas.generation_incomplete",
		Message: e.Error(),
		Data:    map[string]string{"recordId": e.RecordID},
	}
}
