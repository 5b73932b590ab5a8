package httpapi

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/server/services"
)

type profileUpdateRequest struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`

	StorageEnabled   *bool   `json:"storageEnabled"`
	StorageEndpoint  *string `json:"storageEndpoint"`
	StorageRegion    *string `json:"storageRegion"`
	StorageBucket    *string `json:"storageBucket"`
	StorageAccessKey *string `json:"storageAccessKey"`
	StorageSecretKey *string `json:"storageSecretKey"`

	SMTPHost     *string `json:"smtpHost"`
	SMTPPort     *int    `json:"smtpPort"`
	SMTPUsername *string `json:"smtpUsername"`
	SMTPPassword *string `json:"smtpPassword"`
	SMTPFrom     *string `json:"smtpFrom"`
}

// handleUpdateProfile applies a partial update: only fields present in the
// request body change.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user := *currentUser(r)

	apply(&user.DisplayName, req.DisplayName)
	apply(&user.Bio, req.Bio)
	apply(&user.Storage.Enabled, req.StorageEnabled)
	apply(&user.Storage.Endpoint, req.StorageEndpoint)
	apply(&user.Storage.Region, req.StorageRegion)
	apply(&user.Storage.Bucket, req.StorageBucket)
	apply(&user.Storage.AccessKey, req.StorageAccessKey)
	apply(&user.Storage.SecretKey, req.StorageSecretKey)
	apply(&user.SMTP.Host, req.SMTPHost)
	apply(&user.SMTP.Port, req.SMTPPort)
	apply(&user.SMTP.Username, req.SMTPUsername)
	apply(&user.SMTP.Password, req.SMTPPassword)
	apply(&user.SMTP.From, req.SMTPFrom)

	updated, err := s.users.UpdateProfile(r.Context(), &user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// handleUploadAvatar accepts a multipart "avatar" field, image only,
// at most 2 MiB. Users can only change their own avatar.
func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if mux.Vars(r)["id"] != user.ID {
		writeError(w, common.ErrForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.AvatarMaxSize+4096)
	if err := r.ParseMultipartForm(services.AvatarMaxSize + 4096); err != nil {
		writeError(w, common.ErrValidation)
		return
	}

	file, header, err := r.FormFile("avatar")
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

	url, err := s.attachments.UploadAvatar(r.Context(), user, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": url})
}
