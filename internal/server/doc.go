// Package server exposes idguard as a small JSON HTTP API.
//
// Routes:
//
//	POST /api/v1/exposure       {"email": "...", "query": "..."}
//	POST /api/v1/hygiene        {"answers": {"pass_reuse": 2, ...}}
//	GET  /api/v1/questionnaire
//	GET  /api/v1/reports?type=&limit=&page=
//	GET  /api/v1/reports/{id}
//	GET  /healthz
//
// Every response carries an X-Request-ID header. The API has no
// authentication and is meant to listen on localhost.
package server
