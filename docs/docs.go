// Package docs registra la spec swagger del servicio.
// Mantenido a mano junto a las anotaciones de los handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["ops"],
                "summary": "Healthcheck",
                "responses": {"200": {"description": "ok"}}
            }
        },
        "/medications": {
            "get": {
                "tags": ["medications"],
                "summary": "Listar catálogo de medicamentos",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "unauthorized"}
                }
            },
            "post": {
                "tags": ["medications"],
                "summary": "Crear medicamento (solo admin)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "forbidden"},
                    "409": {"description": "medication already exists"}
                }
            }
        },
        "/medications/{medicationID}": {
            "get": {
                "tags": ["medications"],
                "summary": "Obtener un medicamento",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "medicationID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "medication not found"}
                }
            }
        },
        "/me/schedule": {
            "get": {
                "tags": ["schedules"],
                "summary": "Vista reconciliada del schedule propio",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "mapa container -> {pill, alarms}"},
                    "401": {"description": "unauthorized"}
                }
            },
            "put": {
                "tags": ["schedules"],
                "summary": "Aplicar estado deseado del schedule propio",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "resumen created/updated/skipped"},
                    "400": {"description": "container o fecha inválidos"},
                    "403": {"description": "only elders may update their schedule"}
                }
            }
        },
        "/me/schedule/records": {
            "get": {
                "tags": ["schedules"],
                "summary": "Registros crudos del schedule propio",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/me/schedule/records/{recordID}": {
            "delete": {
                "tags": ["schedules"],
                "summary": "Cancelar una dosis planificada (soft delete)",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "recordID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "forbidden"},
                    "404": {"description": "record not found"}
                }
            }
        },
        "/elders/{elderID}/schedule": {
            "get": {
                "tags": ["schedules"],
                "summary": "Schedule de un elder conectado (caregiver/admin)",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "elderID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "forbidden"}
                }
            },
            "put": {
                "tags": ["schedules"],
                "summary": "Aplicar schedule de un elder conectado (scope schedule:write)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "elderID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "forbidden"}
                }
            }
        },
        "/me/connections": {
            "get": {
                "tags": ["connections"],
                "summary": "Conexiones donde el caller es el elder",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["connections"],
                "summary": "Invitar a un caregiver",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "only elders may invite caregivers"}
                }
            }
        },
        "/me/elders": {
            "get": {
                "tags": ["connections"],
                "summary": "Conexiones donde el caller es el caregiver",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/connections/{connectionID}/accept": {
            "post": {
                "tags": ["connections"],
                "summary": "Aceptar invitación (caregiver)",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "connectionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "connection not found"},
                    "409": {"description": "invalid state"}
                }
            }
        },
        "/connections/{connectionID}/revoke": {
            "post": {
                "tags": ["connections"],
                "summary": "Revocar conexión (elder)",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "connectionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "connection not found"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "pillminder API",
	Description:      "Backend de recordatorio de medicación para elders y caregivers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
