package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Zone Analytics API",
        "description": "Performance zone analytics for college students",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Zones",
            "description": "Zone statistics, student analytics and the recompute pipeline"
        },
        {
            "name": "Prerequisites",
            "description": "Analytics eligibility checks"
        },
        {
            "name": "ClassAssignments",
            "description": "Capacity-aware class placement"
        }
    ],
    "paths": {
        "/zones/overview": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "College-wide zone distribution",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Statistics not ready or resource not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/campuses/{campus}": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "Zone distribution of one campus",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "campus",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Boys or Girls"
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Statistics not ready or resource not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/campuses/{campus}/grades/{grade}": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "Zone distribution of one grade",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "campus",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Boys or Girls"
                    },
                    {
                        "name": "grade",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "11th or 12th"
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Statistics not ready or resource not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/classes/{classId}": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "Class zone distribution with roster",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Statistics not ready or resource not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/subjects": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "Subjects with analytics in the year",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Statistics not ready or resource not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/subjects/{subject}": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "Zone distribution for one subject",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "subject",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Statistics not ready or resource not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/students": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "Search students by placement and zone",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "grade",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "classId",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "zone",
                        "in": "query",
                        "type": "string",
                        "description": "green, blue, yellow or red"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string",
                        "description": "applies the zone filter to this subject"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/students/{studentId}": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "Analytics of one student",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Statistics not ready or resource not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/students/{studentId}/calculate": {
            "post": {
                "tags": [
                    "Zones"
                ],
                "summary": "Recalculate analytics for one student",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CalculateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/export": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "Export zone data as JSON, CSV or PDF",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "level",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "overview",
                            "campus",
                            "grade",
                            "class",
                            "subject",
                            "students"
                        ]
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "json",
                            "csv",
                            "pdf"
                        ]
                    },
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "grade",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "classId",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "zone",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/statistics/refresh": {
            "post": {
                "tags": [
                    "Zones"
                ],
                "summary": "Regenerate overall and per-subject statistics",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AcademicYearRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/recompute": {
            "post": {
                "tags": [
                    "Zones"
                ],
                "summary": "Run validate, calculate and refresh for a year",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RecomputeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "202": {
                        "description": "Queued",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Recompute already running",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/recompute/{id}": {
            "get": {
                "tags": [
                    "Zones"
                ],
                "summary": "Status of a queued recompute",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/prerequisites/{studentId}": {
            "get": {
                "tags": [
                    "Prerequisites"
                ],
                "summary": "Check whether a student can receive analytics",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/prerequisites/{studentId}/fix": {
            "post": {
                "tags": [
                    "Prerequisites"
                ],
                "summary": "Validate a student and apply automatic fixes",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "strict",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Issues remain",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/zones/prerequisites/batch": {
            "post": {
                "tags": [
                    "Prerequisites"
                ],
                "summary": "Validate and fix a list of students",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StudentIDsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/class-assignments/suggest/{studentId}": {
            "get": {
                "tags": [
                    "ClassAssignments"
                ],
                "summary": "Suggest the least loaded matching class",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/class-assignments/{studentId}": {
            "post": {
                "tags": [
                    "ClassAssignments"
                ],
                "summary": "Assign one student to a class",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "No class with capacity",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/class-assignments/unassigned": {
            "post": {
                "tags": [
                    "ClassAssignments"
                ],
                "summary": "Assign every admitted student without a class",
                "produces": [
                    "application/json"
                ],
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/class-assignments/selected": {
            "post": {
                "tags": [
                    "ClassAssignments"
                ],
                "summary": "Assign the listed students",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StudentIDsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "AcademicYearRequest": {
            "type": "object",
            "required": [
                "academicYear"
            ],
            "properties": {
                "academicYear": {
                    "type": "string"
                }
            }
        },
        "CalculateRequest": {
            "type": "object",
            "required": [
                "academicYear"
            ],
            "properties": {
                "academicYear": {
                    "type": "string"
                },
                "trigger": {
                    "type": "string",
                    "enum": [
                        "manual",
                        "automatic",
                        "new_result",
                        "batch_update"
                    ]
                }
            }
        },
        "RecomputeRequest": {
            "type": "object",
            "required": [
                "academicYear"
            ],
            "properties": {
                "academicYear": {
                    "type": "string"
                },
                "async": {
                    "type": "boolean"
                }
            }
        },
        "StudentIDsRequest": {
            "type": "object",
            "required": [
                "studentIds"
            ],
            "properties": {
                "studentIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
