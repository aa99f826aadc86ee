package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	deliverycontext "greencycle/internal/delivery/context"
	"greencycle/internal/domain/entity"
	"greencycle/internal/domain/repository"
	"greencycle/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func newRetryableError(err error) error {
	return &retryableError{err: err}
}

func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// PushHandler consumes collection lifecycle events.
// Events that change what is pending drop the cached listings of every
// partner handling the material, repairing any invalidation the API
// could not complete after its commit.
type PushHandler struct {
	logger       *slog.Logger
	partnerRepo  repository.PartnerRepository
	pendingCache service.PendingCache
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Logger       *slog.Logger
	PartnerRepo  repository.PartnerRepository
	PendingCache service.PendingCache
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	return &PushHandler{
		logger:       params.Logger,
		partnerRepo:  params.PartnerRepo,
		pendingCache: params.PendingCache,
	}
}

// HandlePush handles incoming Pub/Sub push messages.
// Malformed messages are rejected with 400, retryable failures answer 503
// so the message is redelivered, and everything else is acknowledged.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.CollectionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse collection event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing collection event",
		slog.String("message_id", pushMsg.Message.MessageID),
		slog.String("collection_id", event.CollectionID),
		slog.String("action", event.Action),
		slog.String("request_state", event.RequestState),
		slog.String("payment_state", event.PaymentState),
	)

	if err := h.processEvent(ctx, &event); err != nil {
		reqLogger.Error("[Worker] Failed to process collection event",
			slog.String("collection_id", event.CollectionID),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	return c.NoContent(http.StatusOK)
}

// extractRequestID prefers message attributes, then the event, then the push request itself.
func extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.CollectionEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// changesPending reports whether action adds or removes a collection from pending listings.
func changesPending(action string) bool {
	switch action {
	case service.ActionCreated, entity.ActionAccept.String(), entity.ActionCancel.String():
		return true
	default:
		return false
	}
}

func (h *PushHandler) processEvent(ctx context.Context, event *service.CollectionEvent) error {
	if !changesPending(event.Action) {
		return nil
	}

	materialID, err := uuid.Parse(event.MaterialID)
	if err != nil {
		return errors.Wrapf(err, "invalid material id %q", event.MaterialID)
	}

	partnerIDs, err := h.partnerRepo.FindIDsByMaterial(ctx, materialID)
	if err != nil {
		return newRetryableError(errors.Wrap(err, "failed to resolve partners"))
	}

	if err := h.pendingCache.InvalidatePartners(ctx, partnerIDs...); err != nil {
		return newRetryableError(errors.Wrap(err, "failed to invalidate pending cache"))
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).Debug("[Worker] Pending listings invalidated",
		slog.String("material_id", materialID.String()),
		slog.Int("partners", len(partnerIDs)),
	)

	return nil
}
