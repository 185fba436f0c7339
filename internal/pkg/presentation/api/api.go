package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"log/slog"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/application/assets"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/application/boundary"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/application/feedback"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/application/statistics"
	"github.com/visitnwp/tourism-asset-mgmt/pkg/types"
)

var tracer = otel.Tracer("tourism-asset-mgmt/api")

const uploadFieldName string = "geojsonFile"

func RegisterHandlers(
	ctx context.Context, router *chi.Mux,
	assetSvc assets.AssetService, boundarySvc boundary.BoundaryService,
	feedbackSvc feedback.FeedbackService, statsSvc statistics.StatsService,
) (*chi.Mux, error) {

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log := logging.GetFromContext(ctx)

	router.Route("/api", func(r chi.Router) {
		r.Get("/assets", getAssetsHandler(log, assetSvc))
		r.Get("/boundary", getBoundaryHandler(log, boundarySvc))
		r.Get("/stats/category-distribution", getCategoryDistributionHandler(log, statsSvc))
		r.Post("/feedback", createFeedbackHandler(log, feedbackSvc))
		r.Post("/upload-geojson", uploadGeoJSONHandler(log, assetSvc))
	})

	return router, nil
}

func getAssetsHandler(log *slog.Logger, svc assets.AssetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-assets")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		collection, err := svc.GetAll(ctx)
		if err != nil {
			requestLogger.Error("unable to fetch tourism assets", "err", err.Error())
			writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve tourism assets")
			return
		}

		writeJSON(w, http.StatusOK, collection)
	}
}

func getBoundaryHandler(log *slog.Logger, svc boundary.BoundaryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-boundary")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		collection, err := svc.Get(ctx)
		if err != nil {
			requestLogger.Error("unable to fetch boundary", "err", err.Error())
			writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve boundary data")
			return
		}

		writeJSON(w, http.StatusOK, collection)
	}
}

func getCategoryDistributionHandler(log *slog.Logger, svc statistics.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-category-distribution")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		distribution, err := svc.CategoryDistribution(ctx)
		if err != nil {
			requestLogger.Error("unable to compute category distribution", "err", err.Error())
			writeJSONError(w, http.StatusInternalServerError, "Failed to compute category distribution")
			return
		}

		if distribution == nil {
			distribution = []types.CategoryCount{}
		}

		writeJSON(w, http.StatusOK, distribution)
	}
}

func createFeedbackHandler(log *slog.Logger, svc feedback.FeedbackService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "create-feedback")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			requestLogger.Error("unable to read body", "err", err.Error())
			writeJSON(w, http.StatusBadRequest, feedbackResponse{Success: false, Error: "All fields are required."})
			return
		}

		var sub feedback.Submission
		err = json.Unmarshal(body, &sub)
		if err != nil {
			requestLogger.Error("unable to unmarshal body", "err", err.Error())
			writeJSON(w, http.StatusBadRequest, feedbackResponse{Success: false, Error: "All fields are required."})
			return
		}

		record, err := svc.Append(ctx, sub)
		if err != nil {
			if errors.Is(err, feedback.ErrIncompleteFeedback) {
				writeJSON(w, http.StatusBadRequest, feedbackResponse{Success: false, Error: "All fields are required."})
				return
			}

			requestLogger.Error("unable to store feedback", "err", err.Error())
			writeJSON(w, http.StatusInternalServerError, feedbackResponse{Success: false, Error: "Server error occurred."})
			return
		}

		requestLogger.Debug("feedback received", "id", record.ID)

		writeJSON(w, http.StatusOK, feedbackResponse{Success: true, Message: "Thank you for your contribution!"})
	}
}

func uploadGeoJSONHandler(log *slog.Logger, svc assets.AssetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "upload-geojson")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		file, _, err := r.FormFile(uploadFieldName)
		if err != nil {
			requestLogger.Debug("upload request without file", "err", err.Error())
			writeText(w, http.StatusBadRequest, "No file uploaded.")
			return
		}
		defer file.Close()

		body, err := io.ReadAll(file)
		if err != nil {
			requestLogger.Error("unable to read uploaded file", "err", err.Error())
			writeText(w, http.StatusInternalServerError, "Failed to process GeoJSON file.")
			return
		}

		var collection types.FeatureCollection
		err = json.Unmarshal(body, &collection)
		if err != nil {
			requestLogger.Error("uploaded file is not valid JSON", "err", err.Error())
			writeText(w, http.StatusInternalServerError, "Failed to process GeoJSON file.")
			return
		}

		count, err := svc.ReplaceAll(ctx, collection)
		if err != nil {
			if errors.Is(err, assets.ErrInvalidCollection) {
				writeText(w, http.StatusBadRequest, "Invalid GeoJSON file format.")
				return
			}

			requestLogger.Error("unable to replace asset dataset", "err", err.Error())
			writeText(w, http.StatusInternalServerError, "Failed to process GeoJSON file.")
			return
		}

		writeText(w, http.StatusOK, fmt.Sprintf("Successfully uploaded and replaced data with %d new assets.", count))
	}
}
