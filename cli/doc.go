// Package cli contains the command line interface for maillist.
//
// # Usage
//
// Expressions are evaluated by default, one per argument:
//
//	maillist -s team.lists 'staff ! admins'
//	maillist 'ops = alice@example.com, bob@example.com' 'ops, staff'
//
// With no expression, each line read from stdin is evaluated in turn.
//
// Subcommands format a registry, start the console or serve it over HTTP:
//
//	maillist fmt json -i 2 team.lists
//	maillist -s redis://localhost:6379/0 repl
//	maillist -s team.lists serve --addr :8025 --save team.lists
//
// # Sources
//
// Each --source is a file, a redis:// URL or "-" for stdin. Relative file
// names not found in the working directory are looked up in the
// configuration directory and then in the directories listed by the
// MAILLIST_PATH environment variable. A file named more than once, even via
// a symlink, is loaded once. A source holds "name = body;" definitions
// only, in the format written by --save.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the configuration directory, a
// flat YAML mapping of flag names with hyphens written as underscores:
//
//	log_level: debug
//	max_depth: 64
//	source:
//	  - team.lists
//
// The init subcommand writes the current flag values to that file. A JSON
// file of the same name with a .json suffix is also honored. Command-line
// flags override both.
//
// The CLI also provides logging and profiling configuration:
//
//	maillist --log-level=debug --pprof-mode=cpu
//
// Profiling flags exist only in builds with the pprof tag.
package cli
