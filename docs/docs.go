// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

// Package docs registers the OpenAPI document served at /swagger/doc.json.
// Regenerate with: swag init -g cmd/server/docs.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "GitHub Repository",
            "url": "https://github.com/tomtom215/chinookdash/issues"
        },
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Core"],
                "summary": "Get system health status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/health/live": {
            "get": {
                "tags": ["Core"],
                "summary": "Kubernetes liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "tags": ["Core"],
                "summary": "Kubernetes readiness probe",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}
            }
        },
        "/performance": {
            "get": {
                "tags": ["Core"],
                "summary": "Get request performance statistics",
                "parameters": [{"type": "integer", "description": "Number of recent requests to include", "name": "recent", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/filters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Filters"],
                "summary": "Get filter options",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/filters/defaults": {
            "get": {
                "tags": ["Filters"],
                "summary": "Get default filters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get dataset summary",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/working-set": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get working set statistics",
                "parameters": [
                    {"$ref": "#/parameters/genres"},
                    {"$ref": "#/parameters/artists"},
                    {"$ref": "#/parameters/countries"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/pages/{page}": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get a dashboard page",
                "parameters": [
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/start_date"},
                    {"$ref": "#/parameters/end_date"},
                    {"$ref": "#/parameters/genres"},
                    {"$ref": "#/parameters/artists"},
                    {"$ref": "#/parameters/countries"},
                    {"enum": ["genre", "artist", "country"], "type": "string", "name": "group", "in": "query"},
                    {"enum": ["revenue", "num_customers", "num_purchases", "tracks_sold", "first_time_customers"], "type": "string", "name": "metric", "in": "query"},
                    {"enum": ["yearly", "aggregate"], "type": "string", "name": "geo_mode", "in": "query"},
                    {"type": "integer", "name": "top_n", "in": "query"},
                    {"enum": ["light", "dark"], "type": "string", "name": "theme", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid filters", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Unknown page", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Get a dashboard page from a JSON filter body",
                "parameters": [
                    {"$ref": "#/parameters/page"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/validation.PageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid filters", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/kpis": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get shared KPIs",
                "parameters": [{"type": "integer", "name": "top_n", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/retention": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get cohort retention",
                "parameters": [
                    {"type": "integer", "description": "Largest month offset (0 spans the working set)", "name": "max_offset", "in": "query"},
                    {"type": "string", "description": "Comma-separated top-cohort offsets, e.g. 3,6", "name": "offsets", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/invoices": {
            "get": {
                "tags": ["Invoices"],
                "summary": "List invoices",
                "parameters": [{"type": "integer", "description": "Row limit (0-100000, default 100)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/invoices/export.csv": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["Invoices"],
                "summary": "Export invoices as CSV",
                "parameters": [{"type": "integer", "description": "Row limit (0 = all)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/last-updated": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get last-updated date",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/ws": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Page bundles over WebSocket",
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "parameters": {
        "page": {"enum": ["overview", "timeseries", "group", "geo", "retention", "insights"], "type": "string", "name": "page", "in": "path", "required": true},
        "start_date": {"type": "string", "description": "Start date (YYYY-MM-DD)", "name": "start_date", "in": "query"},
        "end_date": {"type": "string", "description": "End date (YYYY-MM-DD)", "name": "end_date", "in": "query"},
        "genres": {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "genres", "in": "query"},
        "artists": {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "artists", "in": "query"},
        "countries": {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "countries", "in": "query"}
    },
    "definitions": {
        "models.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object"}
            }
        },
        "models.Metadata": {
            "type": "object",
            "properties": {
                "timestamp": {"type": "string"},
                "query_time_ms": {"type": "integer"},
                "cached": {"type": "boolean"},
                "request_id": {"type": "string"}
            }
        },
        "models.APIResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "data": {},
                "metadata": {"$ref": "#/definitions/models.Metadata"},
                "error": {"$ref": "#/definitions/models.APIError"}
            }
        },
        "validation.FilterRequest": {
            "type": "object",
            "properties": {
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "genres": {"type": "array", "items": {"type": "string"}},
                "artists": {"type": "array", "items": {"type": "string"}},
                "countries": {"type": "array", "items": {"type": "string"}}
            }
        },
        "validation.PageRequest": {
            "type": "object",
            "properties": {
                "filters": {"$ref": "#/definitions/validation.FilterRequest"},
                "group": {"type": "string"},
                "metric": {"type": "string"},
                "geo_mode": {"type": "string"},
                "top_n": {"type": "integer"},
                "theme": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Chinook Dashboard API",
	Description:      "Sales analytics for the Chinook music store snapshot.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
