package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CampusWell Counsel API",
        "description": "Campus mental-health counselling platform: anonymous student identities, appointment booking, QR session lifecycle and management analytics",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and password management"},
        {"name": "Identity", "description": "Anonymous student identity and QR payload"},
        {"name": "Counsellors", "description": "Counsellor directory with derived availability"},
        {"name": "Slots", "description": "Counsellor recurring availability windows"},
        {"name": "Appointments", "description": "Booking lifecycle up to check-in"},
        {"name": "Sessions", "description": "QR check-in/check-out and feedback"},
        {"name": "Journal", "description": "Private mood and journal entries"},
        {"name": "Analytics", "description": "Management rollups and report exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/onboarding": {
            "post": {
                "tags": ["Identity"],
                "summary": "Complete one-time student onboarding",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OnboardingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already onboarded"}
                }
            }
        },
        "/students/me/qr-code": {
            "get": {
                "tags": ["Identity"],
                "summary": "Own QR identity",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counsellors": {
            "get": {
                "tags": ["Counsellors"],
                "summary": "Counsellor directory",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counsellors/{counsellorId}/slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "List a counsellor's bookable slots",
                "parameters": [
                    {"name": "counsellorId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots": {
            "post": {
                "tags": ["Slots"],
                "summary": "Declare an availability slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate slot"}
                }
            }
        },
        "/slots/{id}": {
            "patch": {
                "tags": ["Slots"],
                "summary": "Edit or toggle a slot",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "delete": {
                "tags": ["Slots"],
                "summary": "Remove a slot",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/appointments": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Book an appointment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookAppointmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflicting appointment"}
                }
            },
            "get": {
                "tags": ["Appointments"],
                "summary": "List own appointments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/appointments/{id}": {
            "delete": {
                "tags": ["Appointments"],
                "summary": "Cancel an appointment",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/appointments/{id}/reschedule": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Request rescheduling",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "QR check-in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StartSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid QR code"},
                    "409": {"description": "Session in progress"}
                }
            },
            "get": {
                "tags": ["Sessions"],
                "summary": "List own session history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/end": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Check out a session",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EndSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Session already ended"}
                }
            }
        },
        "/sessions/{id}/feedback": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Submit feedback for an ended session",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeedbackRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate feedback"}
                }
            }
        },
        "/journal": {
            "post": {
                "tags": ["Journal"],
                "summary": "Record a mood or journal entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LogJournalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "200": {"description": "Replay resolved to stored entry"}
                }
            },
            "get": {
                "tags": ["Journal"],
                "summary": "List own entries",
                "parameters": [
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/departments": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Sessions by department",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/years": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Sessions by academic year",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/severity": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Severity distribution",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/volume": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Monthly session volume",
                "parameters": [
                    {"name": "months", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/reports": {
            "post": {
                "tags": ["Analytics"],
                "summary": "Queue a report export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"}
                }
            }
        },
        "/analytics/reports/{id}": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/analytics/reports/download": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Download a finished report",
                "parameters": [
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "OnboardingRequest": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "department": {"type": "string"}
            },
            "required": ["year", "department"]
        },
        "CreateSlotRequest": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "integer"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            },
            "required": ["startTime", "endTime"]
        },
        "BookAppointmentRequest": {
            "type": "object",
            "properties": {
                "counsellorId": {"type": "string"},
                "timeSlotId": {"type": "string"},
                "appointmentDate": {"type": "string", "format": "date-time"}
            },
            "required": ["counsellorId", "timeSlotId", "appointmentDate"]
        },
        "StartSessionRequest": {
            "type": "object",
            "properties": {
                "qrData": {"type": "string"}
            },
            "required": ["qrData"]
        },
        "EndSessionRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "string"},
                "severity": {"type": "string", "enum": ["red", "yellow", "green"]}
            },
            "required": ["notes", "severity"]
        },
        "FeedbackRequest": {
            "type": "object",
            "properties": {
                "rating": {"type": "integer"},
                "comment": {"type": "string"},
                "wasHelpful": {"type": "boolean"},
                "wouldRecommend": {"type": "boolean"}
            },
            "required": ["rating"]
        },
        "LogJournalRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["mood", "journal"]},
                "mood": {"type": "string"},
                "body": {"type": "string"},
                "clientKey": {"type": "string"},
                "loggedAt": {"type": "string", "format": "date-time"}
            },
            "required": ["kind", "body", "clientKey"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["department", "year", "severity", "volume"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "months": {"type": "integer"}
            },
            "required": ["type", "format"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
