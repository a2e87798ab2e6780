package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// AnalyzeRequest is the body of the analyze endpoints
type AnalyzeRequest struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRg..."`
}

// ScoreRequest is the body of the score endpoint
type ScoreRequest struct {
	Emotions map[string]float64 `json:"emotions"`
}

// ConfidenceDetails is the breakdown of a confidence calculation
type ConfidenceDetails struct {
	Score                float64 `json:"score" example:"78.5"`
	DominantEmotion      string  `json:"dominant_emotion" example:"happy"`
	HappyTotal           float64 `json:"happy_total" example:"62.0"`
	NegativeTotal        float64 `json:"negative_total" example:"8.0"`
	NeutralImpact        float64 `json:"neutral_impact" example:"20.0"`
	SurpriseContribution float64 `json:"surprise_contribution" example:"10.0"`
	SurpriseReason       string  `json:"surprise_reason" example:"positive (dominant happiness)"`
	BaseCalculation      float64 `json:"base_calculation" example:"44.0"`
}

// AnalysisResponse is a scored image analysis
type AnalysisResponse struct {
	ID              string             `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Provider        string             `json:"provider" example:"deepface"`
	ImageHash       string             `json:"image_hash" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	ConfidenceScore float64            `json:"confidence_score" example:"72.0"`
	Details         ConfidenceDetails  `json:"details"`
	Emotions        map[string]float64 `json:"emotions"`
	LatencyMs       int64              `json:"latency_ms" example:"340"`
	CreatedAt       string             `json:"created_at" example:"2024-01-01T00:00:00Z"`
	Cached          bool               `json:"cached" example:"false"`
}

// ScoreResponse is a scored distribution
type ScoreResponse struct {
	ConfidenceScore float64            `json:"confidence_score" example:"72.0"`
	Details         ConfidenceDetails  `json:"details"`
	Emotions        map[string]float64 `json:"emotions"`
}

// AnalysisListResponse is a page of stored analyses
type AnalysisListResponse struct {
	Items []AnalysisResponse `json:"items"`
	Count int                `json:"count" example:"20"`
}

// SimilarAnalysis is a stored analysis with its distance to the reference
type SimilarAnalysis struct {
	Analysis AnalysisResponse `json:"analysis"`
	Distance float64          `json:"distance" example:"12.4"`
}

// SimilarListResponse is the nearest-neighbour result
type SimilarListResponse struct {
	Items []SimilarAnalysis `json:"items"`
	Count int               `json:"count" example:"5"`
}

// StatsResponse summarizes stored analyses over a window
type StatsResponse struct {
	Since         string           `json:"since" example:"2026-01-01T00:00:00Z"`
	Total         int64            `json:"total" example:"120"`
	AvgConfidence float64          `json:"avg_confidence" example:"63.4"`
	AvgLatencyMs  float64          `json:"avg_latency_ms" example:"180"`
	ByEmotion     map[string]int64 `json:"by_dominant_emotion"`
	ByProvider    map[string]int64 `json:"by_provider"`
}

// HealthResponse is returned by health and readiness probes
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Version  string `json:"version,omitempty" example:"1.0.0"`
	Provider string `json:"provider,omitempty" example:"deepface"`
	Database string `json:"database,omitempty" example:"ok"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

var (
	errUnauthorized = response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Unauthorized"}, "401", "Unauthorized")
	errRateLimited  = response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests")
	errInternal     = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
	apiKeyAuth      = []map[string][]string{{"ApiKeyAuth": {}}}
)

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "MetaMind Emotion API",
		Version:     "v1.0.0",
		Description: "Facial emotion analysis with a contextual confidence score",
		Host:        "localhost:10000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/analyze
		endpoint.New(
			endpoint.POST,
			"/analyze",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("Analyze the emotion in an image"),
			endpoint.WithDescription("Classifies the most prominent face in a base64 image (data URL prefix allowed) and folds the distribution into a 0-100 confidence score. Also served at POST /analyze."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(AnalyzeRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalysisResponse{}, "200", "Analysis completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "NO_IMAGE", Message: "No image provided"}, "400", "Bad Request"),
				errUnauthorized,
				response.New(ErrorResponse{Code: "IMAGE_TOO_LARGE", Message: "Image exceeds the maximum allowed size"}, "413", "Payload Too Large"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted file"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "422", "Unprocessable Entity"),
				errRateLimited,
				errInternal,
				response.New(ErrorResponse{Code: "PROVIDER_UNAVAILABLE", Message: "Emotion provider is unavailable"}, "502", "Bad Gateway"),
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// POST /v1/score
		endpoint.New(
			endpoint.POST,
			"/score",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("Score a known emotion distribution"),
			endpoint.WithDescription("Normalizes raw per-emotion scores to percentages and computes the confidence score without an image. Ties on the dominant emotion go to the label listed first in the request"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(ScoreRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ScoreResponse{}, "200", "Score computed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "400", "Bad Request"),
				errUnauthorized,
				response.New(ErrorResponse{Code: "EMPTY_DISTRIBUTION", Message: "Emotion scores sum to zero"}, "422", "Unprocessable Entity"),
				errRateLimited,
				errInternal,
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/analyses
		endpoint.New(
			endpoint.GET,
			"/analyses",
			endpoint.WithTags("History"),
			endpoint.WithSummary("List recent analyses"),
			endpoint.WithDescription("Most recent first. Only available when a database is configured."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of results (1-100, default 20)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalysisListResponse{}, "200", "Analyses listed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "400", "Bad Request"),
				errUnauthorized,
				errInternal,
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/analyses/{id}
		endpoint.New(
			endpoint.GET,
			"/analyses/{id}",
			endpoint.WithTags("History"),
			endpoint.WithSummary("Get an analysis"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Analysis ID"), parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalysisResponse{}, "200", "Analysis found"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "400", "Bad Request"),
				errUnauthorized,
				response.New(ErrorResponse{Code: "ANALYSIS_NOT_FOUND", Message: "Analysis not found"}, "404", "Not Found"),
				errInternal,
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/analyses/{id}/similar
		endpoint.New(
			endpoint.GET,
			"/analyses/{id}/similar",
			endpoint.WithTags("History"),
			endpoint.WithSummary("Find analyses with a similar emotional profile"),
			endpoint.WithDescription("Nearest neighbours by Euclidean distance over the seven-emotion distribution"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Reference analysis ID"), parameter.WithRequired()),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of results (1-100, default 5)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SimilarListResponse{}, "200", "Similar analyses"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "ANALYSIS_NOT_FOUND", Message: "Analysis not found"}, "404", "Not Found"),
				errInternal,
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),

		// GET /v1/stats
		endpoint.New(
			endpoint.GET,
			"/stats",
			endpoint.WithTags("History"),
			endpoint.WithSummary("Summarize stored analyses"),
			endpoint.WithDescription("Counts and averages over a trailing window. Available when history is enabled."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("window", parameter.Query, parameter.WithDescription("Go duration such as 1h or 168h (default 24h, max 2160h)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatsResponse{}, "200", "Summary"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "400", "Bad Request"),
				errInternal,
			}),
			endpoint.WithSecurity(apiKeyAuth),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
