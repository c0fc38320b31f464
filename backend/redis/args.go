package redis

import (
	"fmt"
	"strconv"
	"strings"
)

// Endpoint is one sentinel address.
type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) Addr() string { return fmt.Sprintf("%s:%d", e.Host, e.Port) }

// ReshapeArguments converts the flat sentinel argument namespace into the
// nested structure the failover client expects:
//
//   - "sentinels" — a single "host:port,host:port" string — becomes a slice
//     of Endpoint. Each pair is split on its last colon; IPv6 hosts with
//     bracket syntax are not supported.
//   - username/password move into two identical nested maps,
//     "connection_kwargs" and "sentinel_kwargs", and are removed from the
//     top level. Leaving them at the top level would make the client
//     authenticate twice and fail.
//   - when "ssl" is truthy, ssl_certfile/ssl_keyfile/ssl_ca_certs are merged
//     into both nested maps. Their presence is not validated here; missing
//     files surface when the client connects.
//
// The input map is not modified.
func ReshapeArguments(args map[string]any) (map[string]any, error) {
	raw, ok := args["sentinels"].(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("redis sentinel backend: sentinels argument is required")
	}

	var endpoints []Endpoint
	for _, pair := range strings.Split(raw, ",") {
		i := strings.LastIndex(pair, ":")
		if i < 0 {
			return nil, fmt.Errorf("redis sentinel backend: malformed sentinel %q, expected host:port", pair)
		}
		port, err := strconv.Atoi(pair[i+1:])
		if err != nil {
			return nil, fmt.Errorf("redis sentinel backend: malformed sentinel port in %q: %w", pair, err)
		}
		endpoints = append(endpoints, Endpoint{Host: pair[:i], Port: port})
	}

	kwargs := map[string]any{}
	if u, ok := args["username"]; ok {
		kwargs["username"] = u
	}
	if p, ok := args["password"]; ok {
		kwargs["password"] = p
	}
	if useSSL, _ := args["ssl"].(bool); useSSL {
		kwargs["ssl"] = true
		for _, name := range []string{"ssl_certfile", "ssl_keyfile", "ssl_ca_certs"} {
			if v, ok := args[name]; ok {
				kwargs[name] = v
			}
		}
	} else if s, ok := args["ssl"].(string); ok {
		if b, err := strconv.ParseBool(s); err == nil && b {
			kwargs["ssl"] = true
			for _, name := range []string{"ssl_certfile", "ssl_keyfile", "ssl_ca_certs"} {
				if v, ok := args[name]; ok {
					kwargs[name] = v
				}
			}
		}
	}

	// Both the data connection and the sentinel control connection need the
	// same credentials, hence two copies.
	out := make(map[string]any, len(args)+2)
	for k, v := range args {
		if k == "username" || k == "password" {
			continue
		}
		out[k] = v
	}
	out["sentinels"] = endpoints
	out["connection_kwargs"] = kwargs
	out["sentinel_kwargs"] = copyMap(kwargs)
	return out, nil
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
