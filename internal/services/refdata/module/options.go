package module

import (
	"chatlake/internal/platform/config"
)

// Options holds configuration options for the refdata service
type Options struct {
	InstancesPath  string
	CompaniesPath  string
	BroadcastsPath string
}

// FromConfig reads the refdata options from config with CORE_REFDATA_ prefix
func FromConfig(cfg config.Conf) Options {
	rd := cfg.Prefix("CORE_REFDATA_")
	return Options{
		InstancesPath:  rd.MayString("INSTANCES", ""),
		CompaniesPath:  rd.MayString("COMPANIES", ""),
		BroadcastsPath: rd.MayString("BROADCASTS", ""),
	}
}
