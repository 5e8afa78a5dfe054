// Package mock provides a canned-response handler: every request receives the
// same status, content type and body.
//
// It backs the `sofie serve` command, which makes sofie usable as a quick mock
// server for a JSON or text endpoint:
//
//	sofie serve --body '{"status":"ok"}'
//	sofie serve --body-file fixtures/users.json --status 200
//
// When no content type is configured, bodies that are valid JSON are served as
// application/json and anything else as text/plain.
package mock
