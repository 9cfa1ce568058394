package docs

// @title           GeoPulse Store API
// @version         1.0
// @description     Reference remote store. A single action endpoint keeps geofence definitions, the last device location and notify preferences, and answers every action with the device's annotated geofence list.

// @host      localhost:3010
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the device JWT.
