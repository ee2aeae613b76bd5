package cli

import "testing"

func TestLogConfig_Scan(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		level  logLevel
		format logFormat
		caller bool
		pretty bool
	}{
		{
			name:   "none",
			args:   []string{"eval", "staff"},
			pretty: true,
		},
		{
			name:   "separate values",
			args:   []string{"--log-level", "debug", "eval", "--log-format", "text"},
			level:  "debug",
			format: "text",
			pretty: true,
		},
		{
			name:   "assigned values",
			args:   []string{"--log-level=warn", "--log-format=json"},
			level:  "warn",
			format: "json",
			pretty: true,
		},
		{
			name:   "booleans",
			args:   []string{"--log-caller", "--no-log-pretty"},
			caller: true,
		},
		{
			name:   "assigned booleans",
			args:   []string{"--log-caller=false", "--no-log-pretty=false", "--log-pretty=bogus"},
			pretty: true,
		},
		{
			name:   "value looks like a flag",
			args:   []string{"--log-level", "--log-caller"},
			caller: true,
			pretty: true,
		},
		{
			name:   "stops at terminator",
			args:   []string{"--", "--log-level", "debug"},
			pretty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if f.Level != tt.level || f.Format != tt.format ||
				f.Caller != tt.caller || f.Pretty != tt.pretty {
				t.Errorf("got level=%q format=%q caller=%v pretty=%v",
					f.Level, f.Format, f.Caller, f.Pretty)
			}
		})
	}
}
