/*
Package ws serves the channel registry over a WebSocket.

Clients send {"id": "1", "channel": "scan-folder", "args": {...}} and receive
{"type": "result", "id": "1", "channel": "scan-folder", "result": {...}}.
A {"type": "ping"} frame is answered with {"type": "pong"}.
*/
package ws
