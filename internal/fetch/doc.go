// Package fetch loads product pages for analysis.
//
// Targets are http(s) URLs, file:// URLs or plain file paths. HTTP requests
// carry a configurable User-Agent and extra headers, are bounded by a body
// size limit, and can be routed through a SOCKS5 proxy.
package fetch
