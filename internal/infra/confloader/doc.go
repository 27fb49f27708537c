// Package confloader loads reactorkv configuration.
//
// Sources are merged with koanf in priority order (highest first):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (REACTORKV_SECTION_KEY)
//  3. Configuration file (YAML)
//  4. Default values (WithDefaults)
//
// Watcher reports changes to a configuration file so that runtime
// settings such as the log level can be reloaded.
package confloader
