package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Elective API",
        "description": "Elective enrollment and roster assignment service",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Electives", "description": "Elective subject enrollment"},
        {"name": "Teacher Assignments", "description": "Teacher to class roster"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/api/v1/elective-subjects/{id}/students": {
            "get": {
                "tags": ["Electives"],
                "summary": "List assignments of an elective subject",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Assignments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Elective subject not found"}
                }
            },
            "post": {
                "tags": ["Electives"],
                "summary": "Enroll a batch of students",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddStudentsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created (possibly partial)", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty student list or missing actor"},
                    "404": {"description": "Elective subject not found"},
                    "409": {"description": "Capacity exceeded or conflicts only"}
                }
            }
        },
        "/api/v1/elective-subjects/{id}/students/{studentId}": {
            "delete": {
                "tags": ["Electives"],
                "summary": "Remove a student from an elective subject",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Removed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing student id"},
                    "404": {"description": "Assignment not found"}
                }
            }
        },
        "/api/v1/teachers/{id}/assignments": {
            "get": {
                "tags": ["Teacher Assignments"],
                "summary": "List assignments of a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Assignments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Teacher not found"}
                }
            },
            "post": {
                "tags": ["Teacher Assignments"],
                "summary": "Assign a teacher to a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing field or missing subject for TEACHER role"},
                    "409": {"description": "Duplicate assignment or already supervising"}
                }
            }
        },
        "/api/v1/teachers/{id}/assignments/{assignmentId}": {
            "delete": {
                "tags": ["Teacher Assignments"],
                "summary": "Remove a teacher assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "assignmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/DeleteAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Removed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Assignment not found"}
                }
            }
        }
    },
    "definitions": {
        "AddStudentsRequest": {
            "type": "object",
            "required": ["student_ids"],
            "properties": {
                "student_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreateTeacherAssignmentRequest": {
            "type": "object",
            "required": ["class_id", "academic_year_id", "branch_id", "role"],
            "properties": {
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "academic_year_id": {"type": "string"},
                "branch_id": {"type": "string"},
                "role": {"type": "string", "enum": ["TEACHER", "SUPERVISOR"]}
            }
        },
        "DeleteAssignmentRequest": {
            "type": "object",
            "properties": {
                "comment": {"type": "string"}
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
