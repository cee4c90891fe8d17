/*
Package http exposes the channel registry over plain HTTP.

Every channel is reachable as POST /ipc/<channel> with its JSON arguments as
the body. The response is always a Result envelope:

	{"success": true, "message": "Scanned folder", "data": {...}}
	{"success": false, "message": "...", "kind": "not_found"}
*/
package http
