package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Junior Ledger API",
        "description": "Student dashboard backend: Canvas aggregation, course file cache, study assistant and the T-account practice ledger",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "CanvasToken": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Canvas access token as 'Bearer <token>'"
        }
    },
    "tags": [
        {"name": "Courses", "description": "Canvas courses with local preferences"},
        {"name": "Files", "description": "Course file tree, cache reconciliation and cached content"},
        {"name": "Documents", "description": "Extracted text corpus per course"},
        {"name": "Uploads", "description": "User-supplied study materials"},
        {"name": "Agenda", "description": "Deadline dashboard"},
        {"name": "Calendar", "description": "Merged month view and context selection"},
        {"name": "Settings", "description": "Refresh cadence, external feed and stored token"},
        {"name": "Chat", "description": "Per-course study assistant"},
        {"name": "Ledger", "description": "Double-entry practice sandbox"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses with local preferences applied",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "includeHidden", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{courseID}": {
            "patch": {
                "tags": ["Courses"],
                "summary": "Patch course nickname or visibility",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "courseID", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{courseID}/color": {
            "get": {
                "tags": ["Courses"],
                "summary": "Canvas dashboard color for a course",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "courseID", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{courseID}/files": {
            "get": {
                "tags": ["Files"],
                "summary": "Course file tree with cache and restriction state",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "courseID", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{courseID}/files/sync": {
            "post": {
                "tags": ["Files"],
                "summary": "Reconcile the course file cache and rebuild extracted documents",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "courseID", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Sync report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid Canvas token"},
                    "507": {"description": "Store quota exhausted"}
                }
            }
        },
        "/api/v1/courses/{courseID}/files/{fileID}/content": {
            "get": {
                "tags": ["Files"],
                "summary": "Cached bytes of a synced course file",
                "security": [{"CanvasToken": []}],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "courseID", "in": "path", "required": true, "type": "integer"},
                    {"name": "fileID", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File bytes"},
                    "404": {"description": "File not cached"}
                }
            }
        },
        "/api/v1/courses/{courseID}/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "Extracted documents for a course",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "courseID", "in": "path", "required": true, "type": "integer"},
                    {"name": "includeText", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/uploads": {
            "get": {
                "tags": ["Uploads"],
                "summary": "List uploads for a course or the semester-wide bucket",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Uploads"],
                "summary": "Store an uploaded study file",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UploadRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "507": {"description": "Store quota exhausted"}
                }
            }
        },
        "/api/v1/uploads/{uploadID}": {
            "delete": {
                "tags": ["Uploads"],
                "summary": "Delete an upload by id",
                "parameters": [
                    {"name": "uploadID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/agenda": {
            "get": {
                "tags": ["Agenda"],
                "summary": "Upcoming deadlines per course with the exam headline",
                "security": [{"CanvasToken": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Three-month event window bucketed by day",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "month", "in": "query", "type": "string", "description": "Focus month (YYYY-MM)"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/calendar/selection": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Selected calendar context codes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Calendar"],
                "summary": "Replace the calendar context selection",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/settings/refresh": {
            "get": {
                "tags": ["Settings"],
                "summary": "Current auto-refresh cadence",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Set the auto-refresh cadence; zero disables it",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/settings/feed": {
            "get": {
                "tags": ["Settings"],
                "summary": "External calendar feed settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Point the calendar at an external iCal feed",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeedSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/settings/token": {
            "get": {
                "tags": ["Settings"],
                "summary": "Whether a Canvas token is stored for background syncs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Store the Canvas token used by background syncs",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{courseID}/chat": {
            "get": {
                "tags": ["Chat"],
                "summary": "Persisted conversation for a course",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "courseID", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Chat"],
                "summary": "Send a message to the course assistant",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "courseID", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "Assistant reply with citations", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Upstream assistant failure"}
                }
            },
            "delete": {
                "tags": ["Chat"],
                "summary": "Clear the conversation for a course",
                "security": [{"CanvasToken": []}],
                "parameters": [
                    {"name": "courseID", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/ledger": {
            "get": {
                "tags": ["Ledger"],
                "summary": "Practice ledger with derived T-account balances",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Ledger"],
                "summary": "Reset the practice ledger",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/ledger/entries": {
            "post": {
                "tags": ["Ledger"],
                "summary": "Post a debit/credit pair to the practice ledger",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LedgerEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure"}
                }
            }
        }
    },
    "definitions": {
        "CourseUpdateRequest": {
            "type": "object",
            "properties": {
                "nickname": {"type": "string"},
                "hidden": {"type": "boolean"}
            }
        },
        "UploadRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "contentType": {"type": "string"},
                "data": {"type": "string", "description": "base64 payload"},
                "courseId": {"type": "integer"}
            },
            "required": ["name", "data"]
        },
        "ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "tutorMode": {"type": "boolean"}
            },
            "required": ["message"]
        },
        "SelectionRequest": {
            "type": "object",
            "properties": {
                "contextCodes": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "RefreshSettingsRequest": {
            "type": "object",
            "properties": {
                "intervalMinutes": {"type": "integer"}
            },
            "required": ["intervalMinutes"]
        },
        "FeedSettingsRequest": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "enabled": {"type": "boolean"}
            }
        },
        "TokenRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            },
            "required": ["token"]
        },
        "AccountRef": {
            "type": "object",
            "properties": {
                "account": {"type": "string"},
                "type": {"type": "string", "enum": ["asset", "liability", "equity", "revenue", "expense"]}
            },
            "required": ["account", "type"]
        },
        "LedgerEntryRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "description": "YYYY-MM-DD, defaults to today"},
                "description": {"type": "string"},
                "debit": {"$ref": "#/definitions/AccountRef"},
                "credit": {"$ref": "#/definitions/AccountRef"},
                "amountCents": {"type": "integer"}
            },
            "required": ["description", "debit", "credit", "amountCents"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
