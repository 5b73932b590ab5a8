package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/server/models"
)

// attachmentMaxSize caps note attachments at 32 MiB.
const attachmentMaxSize = 32 << 20

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, attachmentMaxSize)
	if err := r.ParseMultipartForm(attachmentMaxSize); err != nil {
		writeError(w, common.ErrValidation)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, common.ErrValidation)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, common.ErrValidation)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	a, err := s.attachments.Upload(r.Context(), currentUser(r), mux.Vars(r)["id"], header.Filename, contentType, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	list, err := s.attachments.List(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Attachment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	a, data, err := s.attachments.Fetch(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", "attachment; filename=\""+a.Filename+"\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.attachments.Delete(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

type reportRequest struct {
	To string `json:"to"`
}

func (s *Server) handleSendReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.To == "" {
		writeError(w, common.ErrValidation)
		return
	}

	sent, err := s.reports.Send(r.Context(), currentUser(r), mux.Vars(r)["id"], req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": sent})
}
