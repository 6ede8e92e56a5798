// Package app provides application initialization and lifecycle
// management for the cost dashboard. It wires configuration, logging,
// observability, the ingestion cache and the dashboard service
// together at startup, and handles graceful shutdown.
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Create the ingestion loader and dashboard service
//	4. Set up HTTP handlers and middleware
//	5. Configure and start the HTTP server
//	6. Install the bundled default dataset
//	7. Set up graceful shutdown handlers
//
// The package handles SIGINT and SIGTERM to ensure active requests
// complete and final metrics are flushed. Initialization errors are
// returned to the caller; the package never calls os.Exit directly.
package app
