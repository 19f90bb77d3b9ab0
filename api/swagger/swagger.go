package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "HSMS Announcement API",
        "description": "Announcement endpoints for the High School Management System",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Announcements", "description": "School announcement management"}
    ],
    "paths": {
        "/announcements/active": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List active announcements",
                "description": "Announcements whose date window contains the current calendar date, newest first. No authentication required.",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List all announcements",
                "parameters": [
                    {"name": "username", "in": "query", "type": "string", "required": true, "description": "Caller username"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unknown or missing caller", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Announcements"],
                "summary": "Create announcement",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnnouncementPayload"}}
                ],
                "responses": {
                    "200": {"description": "Created announcement", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid date or payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unknown or missing caller", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements/{id}": {
            "put": {
                "tags": ["Announcements"],
                "summary": "Update announcement",
                "description": "Replaces message and date window wholesale; all fields must be resent.",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnnouncementPayload"}}
                ],
                "responses": {
                    "200": {"description": "Updated announcement", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid id, date, or payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unknown or missing caller", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No matching announcement", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Announcements"],
                "summary": "Delete announcement",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "username", "in": "query", "type": "string", "required": true, "description": "Caller username"}
                ],
                "responses": {
                    "200": {"description": "Deletion confirmation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unknown or missing caller", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No matching announcement", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AnnouncementPayload": {
            "type": "object",
            "required": ["message", "expiration_date"],
            "properties": {
                "message": {"type": "string"},
                "expiration_date": {"type": "string", "format": "date"},
                "start_date": {"type": "string", "format": "date"},
                "username": {"type": "string"}
            }
        },
        "Announcement": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "message": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "expiration_date": {"type": "string", "format": "date"},
                "created_by": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_by": {"type": "string"},
                "updated_at": {"type": "string", "format": "date-time"}
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
