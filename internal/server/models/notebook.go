package models

import "time"

// Project groups experiments under a single owner.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Experiment belongs to a project.
type Experiment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Note is a rich-text entry attached to an experiment or directly to a
// project. Exactly one of ExperimentID and ProjectID is set.
type Note struct {
	ID           string    `json:"id"`
	ExperimentID string    `json:"experimentId,omitempty"`
	ProjectID    string    `json:"projectId,omitempty"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Attachment is a binary blob belonging to a note. StorageKey addresses the
// object in S3-compatible storage or, for local fallback, a relative path.
type Attachment struct {
	ID          string    `json:"id"`
	NoteID      string    `json:"noteId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"-"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
}
