// Package http implements the HTTP handlers of the dashboard. Handlers stay
// thin: they parse and validate query parameters, call the services layer
// and render the result.
//
// # Routes
//
//	GET /api/pumps                       pump group names
//	GET /api/pumps/{pump}/columns        the group's ten columns
//	GET /api/pumps/{pump}/series         time series over ?start=&end=&columns=
//	GET /api/pumps/{pump}/scatter        paired view over ?start=&end=&x=&y=
//	GET /api/pumps/{pump}/histogram      distribution of ?column= in ?bins=
//	GET /api/table                       canonical table metadata
//	GET /api/health, /ready, /live       health checks
//	GET /api/version                     build information
//
// # Caching
//
// View responses carry an ETag derived from the canonical file digest and
// the request URL. A matching If-None-Match answers 304 without computing
// the view.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details and are produced by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/pumps/unknown-group",
//	    "title": "Unknown Pump Group",
//	    "status": 404,
//	    "detail": "unknown pump group: \"pump5\"",
//	    "instance": "/api/pumps/pump5/series"
//	}
package http
