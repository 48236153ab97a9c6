package vol

// Config is the opaque creation/access configuration threaded through
// every dispatch call. The dispatch core reads only the Connector field
// (to resolve a class when no open object exists yet, i.e. for file
// create/open and the is-accessible query); everything else belongs to
// the connector.
type Config struct {
	Connector string
	Options   map[string]any
}

// Option returns a connector private option or the given default.
func (cfg *Config) Option(key string, dflt any) any {
	if cfg == nil || cfg.Options == nil {
		return dflt
	}
	if val, ok := cfg.Options[key]; ok {
		return val
	}
	return dflt
}

// StringOption returns a connector private string option.
func (cfg *Config) StringOption(key string, dflt string) string {
	if val, ok := cfg.Option(key, dflt).(string); ok {
		return val
	}
	return dflt
}

// BoolOption returns a connector private bool option.
func (cfg *Config) BoolOption(key string, dflt bool) bool {
	if val, ok := cfg.Option(key, dflt).(bool); ok {
		return val
	}
	return dflt
}
