package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Offers API",
        "description": "Job offers marketplace: offer search, publishing and reference data",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Offers", "description": "Offer search and lifecycle"},
        {"name": "Reference", "description": "Professions, specializations and agreement types"}
    ],
    "paths": {
        "/offers": {
            "get": {
                "tags": ["Offers"],
                "summary": "Search offers",
                "description": "Only active offers with paid_till in the future and at least one location are returned. Other query keys are exact matches on id, company_id, specialization_id, profession_id or description.",
                "parameters": [
                    {"name": "title", "in": "query", "type": "string"},
                    {"name": "city", "in": "query", "type": "string"},
                    {"name": "salary_from", "in": "query", "type": "integer", "default": 0},
                    {"name": "salary_to", "in": "query", "type": "integer", "default": 20000},
                    {"name": "order", "in": "query", "type": "string", "enum": ["latest", "salary-max", "salary-min"], "default": "latest"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown order or filter field", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Offers"],
                "summary": "Publish offer",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateOfferRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or user without company", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/offers/{id}": {
            "get": {
                "tags": ["Offers"],
                "summary": "Get offer detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Offers"],
                "summary": "Update offer",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateOfferRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or offer of another company", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/professions": {
            "get": {
                "tags": ["Reference"],
                "summary": "List professions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/specializations": {
            "get": {
                "tags": ["Reference"],
                "summary": "List specializations",
                "parameters": [
                    {"name": "profession_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/agreement-types": {
            "get": {
                "tags": ["Reference"],
                "summary": "List agreement types",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateOfferRequest": {
            "type": "object",
            "required": ["title", "salary_from", "salary_to", "paid_till", "specialization_id", "profession_id"],
            "properties": {
                "title": {"type": "string", "maxLength": 255},
                "description": {"type": "string"},
                "salary_from": {"type": "integer", "minimum": 0},
                "salary_to": {"type": "integer", "minimum": 0},
                "active": {"type": "boolean", "default": true},
                "paid_till": {"type": "string", "format": "date-time"},
                "specialization_id": {"type": "string"},
                "profession_id": {"type": "string"},
                "agreement_type_ids": {"type": "array", "items": {"type": "string"}},
                "company_location_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "UpdateOfferRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 255},
                "description": {"type": "string"},
                "salary_from": {"type": "integer", "minimum": 0},
                "salary_to": {"type": "integer", "minimum": 0},
                "active": {"type": "boolean"},
                "paid_till": {"type": "string", "format": "date-time"},
                "specialization_id": {"type": "string"},
                "profession_id": {"type": "string"},
                "agreement_type_ids": {"type": "array", "items": {"type": "string"}, "description": "Replaces the set when present, even if empty"},
                "company_location_ids": {"type": "array", "items": {"type": "string"}, "description": "Replaces the set when present, even if empty"}
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
