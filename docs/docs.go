// Package docs registers the swagger specs of the store and tracker APIs.
package docs

import "github.com/swaggo/swag"

const (
	StoreInstance   = "store"
	TrackerInstance = "tracker"
)

const storeTemplate = `{
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
        "/api": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["store"],
                "summary": "Run a store action",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.StoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StoreResponse"}},
                    "400": {"description": "Bad request"},
                    "401": {"description": "Unauthorized"},
                    "404": {"description": "Geofence not found"},
                    "422": {"description": "Validation error"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "models.GeofenceInput": {
            "type": "object",
            "required": ["name", "radius"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string", "maxLength": 100},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "radius": {"type": "number"},
                "enabled": {"type": "boolean"},
                "notifyOnEnter": {"type": "boolean"},
                "notifyOnExit": {"type": "boolean"},
                "nextDestinationId": {"type": "string"}
            }
        },
        "models.Geofence": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "radius": {"type": "number"},
                "enabled": {"type": "boolean"},
                "notifyOnEnter": {"type": "boolean"},
                "notifyOnExit": {"type": "boolean"},
                "nextDestinationId": {"type": "string"},
                "currentDistance": {"type": "number"},
                "isInside": {"type": "boolean"}
            }
        },
        "models.StoreRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["GET_DATA", "UPDATE_LOCATION", "ADD_GEOFENCE", "EDIT_GEOFENCE", "DELETE_GEOFENCE", "TOGGLE_GEOFENCE", "CHECK_IN", "SEND_SOS", "SET_SETTINGS"]},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "speed": {"type": "number"},
                "accuracy": {"type": "number"},
                "notifyMode": {"type": "string", "enum": ["family", "private"]},
                "payload": {"$ref": "#/definitions/models.GeofenceInput"},
                "id": {"type": "string"},
                "enabled": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "models.StoreResponse": {
            "type": "object",
            "properties": {
                "geofences": {"type": "array", "items": {"$ref": "#/definitions/models.Geofence"}},
                "error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

const trackerTemplate = `{
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
        "/v1/state": {"get": {"tags": ["tracker"], "summary": "Tracker state", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/v1/refresh": {"post": {"tags": ["tracker"], "summary": "Refresh geofences", "responses": {"200": {"description": "OK"}, "502": {"description": "Store unavailable"}}}},
        "/v1/geofences": {"post": {"tags": ["tracker"], "summary": "Create a geofence", "consumes": ["application/json"], "responses": {"201": {"description": "Created"}, "422": {"description": "Validation error"}, "502": {"description": "Store call failed"}}}},
        "/v1/geofences/{id}": {
            "put": {"tags": ["tracker"], "summary": "Edit a geofence", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Geofence not found"}}},
            "delete": {"tags": ["tracker"], "summary": "Delete a geofence", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/geofences/{id}/toggle": {"post": {"tags": ["tracker"], "summary": "Enable or disable a geofence", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "502": {"description": "Store call failed"}}}},
        "/v1/check-in": {"post": {"tags": ["tracker"], "summary": "Check in at the current position", "responses": {"200": {"description": "OK"}, "409": {"description": "No position yet"}}}},
        "/v1/sos": {"post": {"tags": ["tracker"], "summary": "Send an SOS", "responses": {"200": {"description": "OK"}}}},
        "/v1/settings": {"put": {"tags": ["tracker"], "summary": "Set the notify mode", "responses": {"200": {"description": "OK"}}}},
        "/v1/attention/expand": {"post": {"tags": ["tracker"], "summary": "Expand or collapse the tracking view", "responses": {"200": {"description": "OK"}}}},
        "/health": {"get": {"tags": ["Health"], "summary": "Health Check", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfoStore holds exported Swagger Info of the store API.
var SwaggerInfoStore = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3010",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "GeoPulse Store API",
	Description:      "Reference remote store for geofence definitions, device locations and notify preferences.",
	InfoInstanceName: StoreInstance,
	SwaggerTemplate:  storeTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

// SwaggerInfoTracker holds exported Swagger Info of the tracker API.
var SwaggerInfoTracker = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3011",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "GeoPulse Tracker API",
	Description:      "Tracking engine state, geofence mutations and attention control.",
	InfoInstanceName: TrackerInstance,
	SwaggerTemplate:  trackerTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfoStore.InstanceName(), SwaggerInfoStore)
	swag.Register(SwaggerInfoTracker.InstanceName(), SwaggerInfoTracker)
}
