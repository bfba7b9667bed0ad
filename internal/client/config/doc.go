// Package config loads runtime configuration for the visitorhub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. VISITORHUB_SERVER_ADDR, VISITORHUB_REQUEST_TIMEOUT, VISITORHUB_TOKEN
//     and VISITORHUB_SESSION_DIR.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the visitorhub gRPC endpoint
//	-t int      per-request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "5s",
//	  "token": "<access token>",
//	  "session_dir": "/home/me/.config/visitorhub"
//	}
//
// A token from the file or the environment lets one-shot commands such as
// "me" run without logging in first; otherwise the session saved by the last
// login is used.
package config
