package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Lecture Timetable API",
        "description": "Weekly lecture timetable with one-off reschedules and conflict detection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Timetable", "description": "Resolved day, week and grid views"},
        {"name": "Lectures", "description": "Recurring weekly lectures"},
        {"name": "Reschedules", "description": "One-off moves of a single occurrence"}
    ],
    "parameters": {
        "date": {"name": "date", "in": "query", "type": "string", "format": "date", "description": "Defaults to today in the configured zone"},
        "roomId": {"name": "roomId", "in": "query", "type": "string"},
        "instructorId": {"name": "instructorId", "in": "query", "type": "string", "description": "Matches primary instructor and assistants"},
        "courseId": {"name": "courseId", "in": "query", "type": "string"},
        "level": {"name": "level", "in": "query", "type": "integer"},
        "kind": {"name": "kind", "in": "query", "type": "string", "enum": ["THEORETICAL", "PRACTICAL"]},
        "shift": {"name": "shift", "in": "query", "type": "string", "enum": ["MORNING", "EVENING"]},
        "id": {"name": "id", "in": "path", "type": "string", "required": true}
    },
    "paths": {
        "/timetable/day": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Timetable of one day",
                "parameters": [
                    {"$ref": "#/parameters/date"}, {"$ref": "#/parameters/roomId"}, {"$ref": "#/parameters/instructorId"},
                    {"$ref": "#/parameters/courseId"}, {"$ref": "#/parameters/level"}, {"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/shift"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}, "headers": {"X-Snapshot-Taken-At": {"type": "string"}}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Timetable data unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/week": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Sunday to Saturday week containing the date",
                "parameters": [
                    {"$ref": "#/parameters/date"}, {"$ref": "#/parameters/roomId"}, {"$ref": "#/parameters/instructorId"},
                    {"$ref": "#/parameters/courseId"}, {"$ref": "#/parameters/level"}, {"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/shift"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/layout": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Grid layout of one day",
                "parameters": [
                    {"$ref": "#/parameters/date"}, {"$ref": "#/parameters/roomId"}, {"$ref": "#/parameters/instructorId"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/conflicts": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Conflicts among recurring lectures",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export the week or the conflict report",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "type", "in": "query", "type": "string", "enum": ["week", "conflicts"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]},
                    {"$ref": "#/parameters/date"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lectures": {
            "get": {
                "tags": ["Lectures"],
                "summary": "List lectures",
                "parameters": [
                    {"name": "weekday", "in": "query", "type": "integer", "minimum": 0, "maximum": 4},
                    {"$ref": "#/parameters/roomId"}, {"$ref": "#/parameters/instructorId"}, {"$ref": "#/parameters/courseId"},
                    {"$ref": "#/parameters/level"}, {"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/shift"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Lectures"],
                "summary": "Create lecture",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LectureRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lectures/validate": {
            "post": {
                "tags": ["Lectures"],
                "summary": "Dry-run a lecture",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateLectureRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lectures/{id}": {
            "get": {
                "tags": ["Lectures"],
                "summary": "Get lecture",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Lectures"],
                "summary": "Update lecture",
                "parameters": [
                    {"$ref": "#/parameters/id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LectureRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Lectures"],
                "summary": "Delete lecture and its reschedules",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/reschedules": {
            "get": {
                "tags": ["Reschedules"],
                "summary": "List reschedules",
                "parameters": [
                    {"name": "lectureId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "all", "in": "query", "type": "boolean", "description": "Include reschedules whose new date has passed"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Reschedules"],
                "summary": "Reschedule one occurrence",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reschedules/{id}": {
            "get": {
                "tags": ["Reschedules"],
                "summary": "Get reschedule",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Reschedules"],
                "summary": "Delete reschedule",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "LectureRequest": {
            "type": "object",
            "required": ["course_id", "instructor_id", "room_id", "weekday", "start_time", "end_time", "level", "kind", "shift"],
            "properties": {
                "course_id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "assistant_ids": {"type": "array", "items": {"type": "string"}},
                "room_id": {"type": "string"},
                "weekday": {"type": "integer", "minimum": 0, "maximum": 4},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "09:30"},
                "level": {"type": "integer", "minimum": 1},
                "kind": {"type": "string", "enum": ["THEORETICAL", "PRACTICAL"]},
                "shift": {"type": "string", "enum": ["MORNING", "EVENING"]},
                "section_id": {"type": "string"},
                "group_id": {"type": "string"}
            }
        },
        "ValidateLectureRequest": {
            "allOf": [
                {"$ref": "#/definitions/LectureRequest"},
                {"type": "object", "properties": {"lecture_id": {"type": "string"}}}
            ]
        },
        "RescheduleRequest": {
            "type": "object",
            "required": ["lecture_id", "original_date", "new_date", "start_time", "end_time", "room_id"],
            "properties": {
                "lecture_id": {"type": "string"},
                "original_date": {"type": "string", "format": "date"},
                "new_date": {"type": "string", "format": "date"},
                "start_time": {"type": "string", "example": "10:00"},
                "end_time": {"type": "string", "example": "11:00"},
                "room_id": {"type": "string"},
                "reason": {"type": "string", "maxLength": 500}
            }
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
