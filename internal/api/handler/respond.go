package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"papergen/internal/api/middleware"
	"papergen/internal/app/service"
	"papergen/internal/app/sharelink"
	"papergen/internal/common"
	"papergen/internal/platform/logger"
)

// maxBodyBytes leaves room for school logos sent as data URLs.
const maxBodyBytes = 5 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := common.HTTPStatusFromError(err)

	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		common.RespondWithCodedError(w, status, authErr.Code, service.AuthMessage(err))
		return
	}
	var decodeErr *sharelink.DecodeError
	if errors.As(err, &decodeErr) {
		common.RespondWithCodedError(w, http.StatusBadRequest, "share/"+string(decodeErr.Reason), sharelink.UserMessage(err))
		return
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
		common.RespondWithError(w, status, common.ErrInternalServer.Error())
		return
	}
	common.RespondWithError(w, status, err.Error())
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
	}
	return id, ok
}
