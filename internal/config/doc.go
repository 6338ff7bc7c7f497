// Package config loads the kconsole configuration file.
//
// The file is YAML, read from --config or $HOME/.kconsole.yaml. Missing
// files are not an error: [Load] falls back to [Default]. Durations can be
// overridden through KCONSOLE_SUBMIT_TIMEOUT and KCONSOLE_WAIT_TIMEOUT, and
// the result is validated with go-playground/validator before use.
package config
