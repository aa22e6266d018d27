// Package extract parses product records out of page markup.
// Parsing is selector based (goquery), not a rendering engine: it tolerates
// minor markup variations by defaulting missing optional fields, and fails
// with a parse error only when a required structural element is absent.
package extract
