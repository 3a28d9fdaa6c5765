package handler

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/swatto/hooktomattermost/internal/notify"
)

// SourceForPath picks the integration for a request path. Anything that is
// not an OpenPhone route is treated as a Datto RMM alert.
func SourceForPath(path string) notify.Source {
	if strings.Contains(strings.ToLower(path), "openphone") {
		return notify.SourceOpenPhone
	}
	return notify.SourceDatto
}

// HandleLambda serves an API Gateway proxy request with the same contract as
// the HTTP webhooks. Rate limiting is left to API Gateway.
func (h *Handler) HandleLambda(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp := events.APIGatewayProxyResponse{
		Headers: map[string]string{
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": "POST, OPTIONS",
			"Access-Control-Allow-Headers": "Content-Type",
		},
	}

	switch req.HTTPMethod {
	case http.MethodOptions:
		resp.StatusCode = http.StatusOK
		return resp, nil
	case http.MethodPost:
	default:
		return lambdaJSON(resp, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed - use POST"}), nil
	}

	if secret := h.Config.WebhookSecret; secret != "" {
		got := strings.TrimSpace(header(req.Headers, "Authorization"))
		if subtle.ConstantTimeCompare([]byte(got), []byte("Bearer "+secret)) != 1 {
			resp.StatusCode = http.StatusUnauthorized
			resp.Body = "unauthorized"
			return resp, nil
		}
	}

	source := SourceForPath(req.Path)
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			code, e := h.failure(source, notify.Invalid("Invalid base64 request body"))
			return lambdaJSON(resp, code, e), nil
		}
		body = decoded
	}

	code, out := h.Handle(ctx, source, body)
	return lambdaJSON(resp, code, out), nil
}

func lambdaJSON(resp events.APIGatewayProxyResponse, code int, v any) events.APIGatewayProxyResponse {
	data, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		data = []byte(`{"error":"Webhook proxy failed"}`)
	}
	resp.StatusCode = code
	resp.Headers["Content-Type"] = "application/json"
	resp.Body = string(data)
	return resp
}

// header looks up name case-insensitively; API Gateway may lowercase keys.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
