// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
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
        "/invoices": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Create an invoice",
                "parameters": [
                    {"type": "string", "description": "Active business id", "name": "X-Business-ID", "in": "header"},
                    {"description": "Invoice", "name": "invoice", "in": "body", "required": true, "schema": {"$ref": "#/definitions/createInvoiceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/invoice"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Submission failed, retry", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/invoices/due-date": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Compute a due date from an invoice date and payment terms",
                "parameters": [
                    {"description": "Terms", "name": "terms", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dueDateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"due_date": {"type": "string", "format": "date"}}}}
                }
            }
        },
        "/invoices/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Get an invoice",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/invoice"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Delete an invoice with its line items and attachments",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/invoices/{id}/payments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Record a payment with optional TDS withholding",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"description": "Payment", "name": "payment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/paymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Invoice changed concurrently", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/invoices/{id}/document": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["documents"],
                "summary": "Render the invoice document",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"enum": ["classic", "compact", "creative"], "type": "string", "name": "template", "in": "query"}
                ],
                "responses": {"200": {"description": "PDF document"}}
            }
        },
        "/invoices/{id}/document/archive": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["documents"],
                "summary": "Queue the rendered document for archival",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"enum": ["classic", "compact", "creative"], "type": "string", "name": "template", "in": "query"}
                ],
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/invoices/{id}/document/link": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["documents"],
                "summary": "Get a presigned link to the archived document",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"enum": ["classic", "compact", "creative"], "type": "string", "name": "template", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tds-entries": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tds"],
                "summary": "List TDS ledger entries",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "business_id", "in": "query"},
                    {"type": "string", "format": "uuid", "name": "client_id", "in": "query"},
                    {"type": "string", "description": "e.g. 2024-2025", "name": "fiscal_year", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/businesses": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["businesses"],
                "summary": "Create a business, or provision one on behalf of its future owner",
                "parameters": [
                    {"description": "Business", "name": "business", "in": "body", "required": true, "schema": {"$ref": "#/definitions/createBusinessRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Provisioning requires the admin role", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/claims": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["claims"],
                "summary": "Claim the business whose pending owner email matches the caller",
                "parameters": [
                    {"type": "string", "description": "Keep watching for a business to be provisioned, e.g. 30s (at most 1m)", "name": "wait", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Claim result"},
                    "400": {"description": "Invalid wait duration", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "lineItem": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "quantity": {"type": "number"},
                "rate": {"type": "number"}
            }
        },
        "createInvoiceRequest": {
            "type": "object",
            "properties": {
                "business_id": {"type": "string", "format": "uuid"},
                "client_id": {"type": "string", "format": "uuid"},
                "invoice_date": {"type": "string", "format": "date"},
                "due_date": {"type": "string", "format": "date"},
                "payment_terms": {"type": "string"},
                "tax_mode": {"type": "string", "enum": ["intra_state", "inter_state"]},
                "gst_rate": {"type": "number"},
                "cgst": {"type": "number"},
                "sgst": {"type": "number"},
                "igst": {"type": "number"},
                "discount": {"type": "number"},
                "draft": {"type": "boolean"},
                "notes": {"type": "string"},
                "line_items": {"type": "array", "items": {"$ref": "#/definitions/lineItem"}}
            }
        },
        "createBusinessRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "gstin": {"type": "string"},
                "address": {"type": "string"},
                "phone": {"type": "string"},
                "on_behalf": {"type": "boolean"}
            }
        },
        "dueDateRequest": {
            "type": "object",
            "properties": {
                "invoice_date": {"type": "string", "format": "date"},
                "payment_terms": {"type": "string"},
                "client_id": {"type": "string", "format": "uuid"}
            }
        },
        "paymentRequest": {
            "type": "object",
            "properties": {
                "cash_amount": {"type": "number"},
                "tds_amount": {"type": "number"},
                "tds_section": {"type": "string"},
                "received_on": {"type": "string", "format": "date"}
            }
        },
        "invoice": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "invoice_number": {"type": "string"},
                "business_id": {"type": "string", "format": "uuid"},
                "client_id": {"type": "string", "format": "uuid"},
                "status": {"type": "string"},
                "subtotal": {"type": "number"},
                "discount": {"type": "number"},
                "cgst": {"type": "number"},
                "sgst": {"type": "number"},
                "igst": {"type": "number"},
                "total": {"type": "number"},
                "advance_amount": {"type": "number"},
                "tds_amount": {"type": "number"},
                "is_advance_received": {"type": "boolean"},
                "invoice_date": {"type": "string", "format": "date-time"},
                "due_date": {"type": "string", "format": "date-time"},
                "payment_terms": {"type": "string"},
                "line_items": {"type": "array", "items": {"$ref": "#/definitions/lineItem"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "invoicedesk API",
	Description:      "GST invoicing, payments with TDS withholding, invoice documents and business claims.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
