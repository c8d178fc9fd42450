// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts the study and card services to JSON
// over HTTP and maps their errors to status codes.
package api
