// Package utils exposes helpers shared by the gitfleet commands.
//
// It houses ConfigurationLoader (Viper layering with mapstructure decode
// hooks), LoggerFactory (zap construction), CommandContextAccessor and the
// FlushingWriter used for progress output.
package utils
