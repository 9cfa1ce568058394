package docs

// @title           GeoPulse Tracker API
// @version         1.0
// @description     Tracking engine. Exposes the current tracking snapshot, the attention slot and geofence mutations. The render surface is served over the /ws websocket.

// @host      localhost:3011
// @BasePath  /
