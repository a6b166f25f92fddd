package main

// General API documentation for swaggo. Generate with `swag init -g cmd/reportdash/docs.go`.
//
// @title           reportdash API
// @version         1.0
// @description     Test-reporting dashboard: aggregated CI reports, sample-data detection and a diagnostic trace.
//
// @contact.name   reportdash maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
