// Package config loads and validates Andon Core configuration.
//
// Configuration lives in a sectioned key/value file (INI format) because
// the deployed fleet of monitors and the tooling around them already read
// and write that format. The canonical file is andon_server.conf next to
// the binary:
//
//	[server]
//	host = 0.0.0.0
//	port = 5000
//	max_connections = 50
//
//	[data]
//	output_dir = data
//	excel_prefix = data_
//
// When the file is missing, these defaults are written out so the first run
// leaves an editable file behind.
//
// Optional sections ([logging], [pins], [registry], [mqtt], [influxdb])
// enable the extended subsystems; all of them default to disabled or to
// safe values. Secrets (MQTT credentials, InfluxDB token) should be passed
// through ANDON_* environment variables rather than stored in the file.
package config
