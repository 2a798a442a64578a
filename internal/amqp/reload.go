package amqp

import (
	"context"

	"familyassets/internal/log"
)

// Reloader re-reads a collection that another process may have written.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// NewReloadHandler builds a consumer handler that reloads r for changes
// published by other instances. Messages carrying origin are this
// instance's own writes and are acknowledged untouched. onChange runs after
// a reload that changed the collection.
//
// A failed reload is logged and the message acknowledged; the next change
// triggers another attempt.
func NewReloadHandler(origin string, r Reloader, onChange func(), logger *log.Logger) func(context.Context, *AssetChangedMessage) error {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentAMQP)

	return func(ctx context.Context, msg *AssetChangedMessage) error {
		if origin != "" && msg.Origin == origin {
			return nil
		}

		changed, err := r.Reload(ctx)
		if err != nil {
			logger.WarnContext(ctx, "Reload after remote change failed",
				log.FieldEvent, msg.Event,
				log.FieldAssetID, msg.ID,
				log.FieldError, err.Error(),
				log.FieldOperation, log.OpReload)
			return nil
		}
		if changed && onChange != nil {
			onChange()
		}

		logger.InfoContext(ctx, "Remote asset change received",
			log.FieldEvent, msg.Event,
			log.FieldAssetID, msg.ID,
			log.FieldRevision, msg.Revision,
			"origin", msg.Origin,
			"reloaded", changed)
		return nil
	}
}
