package http

import (
	"net/http"

	"familyassets/internal/core"
	"familyassets/internal/log"
	"familyassets/internal/middleware/trace"
	"familyassets/internal/store"
)

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	fields, err := ParseAssetFields(NewRequestBodyParser(r), core.DateOf(s.store.Now()))
	if err != nil {
		s.writeInputError(w, err)
		return
	}

	a, err := s.store.Add(r.Context(), fields)
	if err != nil {
		logger.ErrorContext(r.Context(), "Asset create failed",
			log.FieldError, err.Error(),
			log.FieldOperation, log.OpCreate)
		writeServerError(w, r, "Could not save the asset")
		return
	}

	NewHTMXResponse().
		TriggerAssetsChanged(string(store.EventAdded), s.store.Revision()).
		TriggerFormReset().
		TriggerTabSwitch("assets").
		TriggerSuccessNotification("Asset added").
		BodyHTML(`<div class="success" data-id="` + templateEscape(a.ID) + `">Asset added</div>`).
		Write(w)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	id := r.PathValue("id")

	fields, err := ParseAssetFields(NewRequestBodyParser(r), core.DateOf(s.store.Now()))
	if err != nil {
		s.writeInputError(w, err)
		return
	}

	ok, err := s.store.Update(r.Context(), id, fields)
	if err != nil {
		logger.ErrorContext(r.Context(), "Asset update failed",
			log.FieldError, err.Error(),
			log.FieldAssetID, id,
			log.FieldOperation, log.OpUpdate)
		writeServerError(w, r, "Could not save the asset")
		return
	}

	if !ok {
		NewHTMXResponse().
			TriggerModalClose().
			TriggerInfoNotification("Asset no longer exists, nothing changed").
			Write(w)
		return
	}

	NewHTMXResponse().
		TriggerAssetsChanged(string(store.EventUpdated), s.store.Revision()).
		TriggerModalClose().
		TriggerSuccessNotification("Asset updated").
		Write(w)
}

// handleDeleteAsset removes an asset only when the request carries
// confirm=yes. The page asks for confirmation through hx-confirm.
func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	confirmed := isConfirmed(NewRequestBodyParser(r))

	ev, err := s.store.Remove(r.Context(), id, confirmed)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Asset delete failed",
			log.FieldError, err.Error(),
			log.FieldAssetID, id,
			log.FieldOperation, log.OpDelete)
		writeServerError(w, r, "Could not delete the asset")
		return
	}

	switch ev.Kind {
	case store.EventRemoved:
		NewHTMXResponse().
			TriggerAssetsChanged(string(ev.Kind), s.store.Revision()).
			TriggerSuccessNotification("Asset deleted").
			Write(w)
	case store.EventDeclined:
		NewHTMXResponse().
			TriggerInfoNotification("Deletion cancelled").
			Write(w)
	default:
		NewHTMXResponse().
			TriggerInfoNotification("Asset no longer exists, nothing changed").
			Write(w)
	}
}

func (s *Server) writeInputError(w http.ResponseWriter, err error) {
	msg, ok := userMessage(err)
	if !ok {
		msg = "Invalid request"
	}
	UnprocessableEntityError(msg).
		TriggerErrorNotification(msg).
		Write(w)
}

// writeServerError answers 500 with the request id so a report can be
// matched against the logs.
func writeServerError(w http.ResponseWriter, r *http.Request, msg string) {
	body := msg
	if id := trace.GetRequestID(r.Context()); id != "" {
		body += " (ref " + id + ")"
	}
	InternalServerError(body).
		TriggerErrorNotification(msg).
		Write(w)
}
