package types

// Log actions
const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionMQTTConnected = "mqtt_connected"
	ActionMQTTLost      = "mqtt_connection_lost"

	ActionSampleRejected   = "sample_rejected"
	ActionSampleAccepted   = "sample_accepted"
	ActionProviderFailed   = "provider_unavailable"
	ActionGeofenceEnter    = "geofence_enter"
	ActionGeofenceExit     = "geofence_exit"
	ActionSyncLocation     = "sync_location"
	ActionGeofenceMutation = "geofence_mutation"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionExternalServiceFailed     = "external_service_failed"
)
