package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/labbook/internal/server/models"
)

type projectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type experimentRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

type noteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := s.notebook.CreateProject(r.Context(), currentUser(r).ID, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.notebook.ListProjects(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Project{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.notebook.GetProject(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := s.notebook.UpdateProject(r.Context(), currentUser(r).ID, &models.Project{
		ID:          mux.Vars(r)["id"],
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.notebook.DeleteProject(r.Context(), currentUser(r).ID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req experimentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	e, err := s.notebook.CreateExperiment(r.Context(), currentUser(r).ID, mux.Vars(r)["id"], req.Title, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	list, err := s.notebook.ListExperiments(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Experiment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	e, err := s.notebook.GetExperiment(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExperiment(w http.ResponseWriter, r *http.Request) {
	var req experimentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	e, err := s.notebook.UpdateExperiment(r.Context(), currentUser(r).ID, &models.Experiment{
		ID:     mux.Vars(r)["id"],
		Title:  req.Title,
		Status: req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	if err := s.notebook.DeleteExperiment(r.Context(), currentUser(r).ID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	n, err := s.notebook.CreateNote(r.Context(), currentUser(r).ID, mux.Vars(r)["id"], req.Title, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	list, err := s.notebook.ListNotes(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateProjectNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	n, err := s.notebook.CreateProjectNote(r.Context(), currentUser(r).ID, mux.Vars(r)["id"], req.Title, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleListProjectNotes(w http.ResponseWriter, r *http.Request) {
	list, err := s.notebook.ListProjectNotes(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	n, err := s.notebook.GetNote(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	n, err := s.notebook.UpdateNote(r.Context(), currentUser(r).ID, &models.Note{
		ID:    mux.Vars(r)["id"],
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.notebook.DeleteNote(r.Context(), currentUser(r).ID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
