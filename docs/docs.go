// Package docs holds the swagger document that swag generate would
// otherwise produce from the handler annotations. Hand-maintained here
// in the generator's own output shape: a swag.Spec registered against
// swaggo/swag's global spec registry, plus the raw template string it
// renders from.
package docs

import (
	"github.com/swaggo/swag"
)

var doc = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ping": {
            "get": {
                "tags": ["system"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "pong"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["system"],
                "summary": "Process health and uptime",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/verify": {
            "post": {
                "tags": ["deploy"],
                "summary": "Validate environment name and caller token",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}
            }
        },
        "/upload/init": {
            "post": {
                "tags": ["upload"],
                "summary": "Create or resume a chunked upload task",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/upload/chunk": {
            "post": {
                "tags": ["upload"],
                "summary": "Write one chunk of an in-progress upload",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/upload/complete": {
            "post": {
                "tags": ["upload"],
                "summary": "Merge chunks, verify checksum, save or extract",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/upload/status": {
            "get": {
                "tags": ["upload"],
                "summary": "Report which chunks of a task have landed",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/upload/cancel": {
            "delete": {
                "tags": ["upload"],
                "summary": "Discard an in-progress upload task",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/upload": {
            "post": {
                "tags": ["upload"],
                "summary": "Upload and save or extract a small file in one call",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/upload-stream": {
            "post": {
                "tags": ["upload"],
                "summary": "Compatibility-only single-shot streamed upload",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/deploy": {
            "post": {
                "tags": ["deploy"],
                "summary": "Run the environment's deploy command, optionally streamed as SSE",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "500": {"description": "Internal Server Error"}}
            }
        },
        "/deploy/status": {
            "get": {
                "tags": ["deploy"],
                "summary": "Report whether a deploy is running and its last result",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported swagger spec metadata, populated by
// internal/server.NewHTTPServer before the swagger route is registered.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Deploy Pipeline API",
	Description:      "Chunked upload and remote deploy execution service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  doc,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
