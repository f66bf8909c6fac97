package handlers

import (
	"net/http"

	"github.com/sazzler/api-gateway/middleware"
	"github.com/sazzler/api-gateway/utils"
	"go.uber.org/zap"
)

// IdentityResponse describes the security context of the current request
type IdentityResponse struct {
	Authenticated bool     `json:"authenticated"`
	SubjectID     string   `json:"subject_id,omitempty"`
	Authorities   []string `json:"authorities"`
}

// IdentityHandler exposes the identity the gate attached to a request
type IdentityHandler struct {
	logger *zap.Logger
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(logger *zap.Logger) *IdentityHandler {
	return &IdentityHandler{logger: logger}
}

// HandleMe handles GET /api/v1/me. Anonymous requests get
// authenticated=false rather than an error.
func (h *IdentityHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	response := IdentityResponse{Authorities: []string{}}

	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		response.Authenticated = true
		response.SubjectID = identity.SubjectID
		response.Authorities = identity.Authorities.Slice()
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write identity response",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
	}
}
