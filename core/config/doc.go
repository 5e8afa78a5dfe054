// Package config resolves the listener configuration of a sofie application.
//
// Resolution never fails. The order is:
//
//  1. the configuration file named by Source.Path (toml, yaml or json), when it exists
//     and parses;
//  2. PORT and INTERFACE from the environment (optionally seeded from a .env file),
//     when Source.Env is set;
//  3. the built-in defaults, port 8080 on 0.0.0.0.
//
// A file that exists but cannot be read or parsed is logged and skipped.
//
// # Usage
//
//	cfg := config.Resolve(config.DefaultSource(), zap.L())
//	fmt.Println(cfg.Addr())
package config
