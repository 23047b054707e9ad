package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v71/github"
	"go.opentelemetry.io/otel/trace"

	"polar.sh/ghsync/common/logger"
	"polar.sh/ghsync/internal/http/dto"
	"polar.sh/ghsync/internal/service"
	"polar.sh/ghsync/internal/webhook"
)

// maxPayloadBytes matches GitHub's cap on webhook payloads.
const maxPayloadBytes = 25 << 20

type GitHubWebhookHandler struct {
	ingest      service.DeliveryIngestService
	secret      []byte
	traceHeader string
}

// NewGitHubWebhookHandler verifies X-Hub-Signature-256 only when secret is set.
func NewGitHubWebhookHandler(ingest service.DeliveryIngestService, secret string, traceHeader string) *GitHubWebhookHandler {
	return &GitHubWebhookHandler{
		ingest:      ingest,
		secret:      []byte(secret),
		traceHeader: traceHeader,
	}
}

func (h *GitHubWebhookHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes)

	var (
		body []byte
		err  error
	)
	if len(h.secret) > 0 {
		body, err = github.ValidatePayload(c.Request, h.secret)
		if err != nil {
			slog.WarnContext(ctx, "rejected webhook with invalid signature", "error", err)
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid signature"})
			return
		}
	} else {
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "failed to read request body"})
			return
		}
	}

	event := github.WebHookType(c.Request)
	deliveryID := github.DeliveryID(c.Request)
	if event == "" || deliveryID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing X-GitHub-Event or X-GitHub-Delivery"})
		return
	}

	if event == "ping" {
		c.JSON(http.StatusOK, dto.IngestDeliveryResponse{Status: dto.DeliveryStatusPong, DeliveryID: deliveryID})
		return
	}

	env, err := webhook.Peek(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload"})
		return
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Action:         &env.Action,
		InstallationID: env.InstallationID,
	})

	if !webhook.Supported(event, env.Action) {
		slog.DebugContext(ctx, "ignoring unsupported webhook event")
		c.JSON(http.StatusOK, dto.IngestDeliveryResponse{Status: dto.DeliveryStatusIgnored, DeliveryID: deliveryID})
		return
	}

	params := service.DeliveryIngestParams{
		DeliveryID:     deliveryID,
		Event:          event,
		Action:         env.Action,
		InstallationID: env.InstallationID,
		Payload:        body,
	}
	traceID := c.GetHeader(h.traceHeader)
	if traceID == "" {
		if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
			traceID = spanCtx.TraceID().String()
		}
	}
	if traceID != "" {
		params.TraceID = &traceID
	}

	result, err := h.ingest.Ingest(ctx, params)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDelivery) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to ingest webhook delivery", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to ingest delivery"})
		return
	}

	status := dto.DeliveryStatusQueued
	if result.Duplicated {
		status = dto.DeliveryStatusDuplicate
	}

	slog.InfoContext(ctx, "webhook delivery accepted",
		"delivery_row_id", result.Delivery.ID,
		"enqueued", result.Enqueued,
		"duplicated", result.Duplicated)

	c.JSON(http.StatusAccepted, dto.IngestDeliveryResponse{
		Status:        status,
		DeliveryID:    deliveryID,
		DeliveryRowID: result.Delivery.ID,
	})
}
