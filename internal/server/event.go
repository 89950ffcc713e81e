// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/newspulse/pkg/types"
)

// EventResponse is the gateway-style response returned by HandleEvent.
type EventResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// HandleEvent runs the pipeline for a serverless invocation. The request is
// read from the event's "body" field when present (a JSON string, as sent
// by API gateways) and from the event itself otherwise. Successful runs
// answer 200 with the analysis envelope; any failure answers 500 with
// {"success": false, "error": ...}.
func HandleEvent(ctx context.Context, r Runner, raw []byte) EventResponse {
	req, err := parseEvent(raw)
	if err != nil {
		return eventResponse(500, types.AnalysisResponse{Success: false, Error: err.Error()})
	}

	resp, err := r.Run(ctx, req)
	if err != nil {
		if resp.Error == "" {
			resp = types.AnalysisResponse{Success: false, Error: err.Error()}
		}
		return eventResponse(500, resp)
	}
	return eventResponse(200, resp)
}

type gatewayEvent struct {
	Body *string `json:"body"`
}

func parseEvent(raw []byte) (types.AnalysisRequest, error) {
	var req types.AnalysisRequest
	if len(raw) == 0 {
		return req, nil
	}

	var ev gatewayEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return req, fmt.Errorf("parsing event: %w", err)
	}

	payload := raw
	if ev.Body != nil {
		if *ev.Body == "" {
			return req, nil
		}
		payload = []byte(*ev.Body)
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return req, fmt.Errorf("parsing request body: %w", err)
	}
	return req, nil
}

func eventResponse(status int, body types.AnalysisResponse) EventResponse {
	data, err := json.Marshal(body)
	if err != nil {
		status = 500
		data = []byte(`{"success":false,"error":"encoding response"}`)
	}
	return EventResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(data),
	}
}
