// Package http implements the HTTP handlers for the cost dashboard.
// It is a thin layer between transport and business logic: handlers
// parse and validate requests, delegate to the service layer, and map
// service errors to RFC 7807 problem responses.
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Analytics
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/dataset/not-loaded",
//	    "title": "No Dataset Loaded",
//	    "status": 404,
//	    "detail": "Upload a dataset or install the bundled default before querying",
//	    "instance": "/api/dashboard/summary"
//	}
//
// Handlers are tested with httptest against mocked service
// dependencies.
package http
