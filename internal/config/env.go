// Package config resolves the launcher's startup configuration: the model
// environment (MODEL_PATH, N_CTX, N_THREADS), .env files, and the optional
// launcher file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"llamalaunch/internal/common/fsutil"
)

// Environment variable names and their defaults.
const (
	EnvModelPath   = "MODEL_PATH"
	EnvContextSize = "N_CTX"
	EnvThreadCount = "N_THREADS"

	DefaultContextSize = 4096
	DefaultThreadCount = 16
)

// modelEnv is the raw environment shape parsed by caarlos0/env. The counts
// stay strings so that any integer, not just those fitting in 32 bits, is
// classified by parseCount.
type modelEnv struct {
	ModelPath   string `env:"MODEL_PATH,required,notEmpty"`
	ContextSize string `env:"N_CTX" envDefault:"4096"`
	ThreadCount string `env:"N_THREADS" envDefault:"16"`
}

// Resolved is the validated model configuration. It is immutable once
// returned by Resolve.
type Resolved struct {
	ModelPath   string `json:"model_path"`
	ContextSize int    `json:"context_size"`
	ThreadCount int    `json:"thread_count"`
}

// Environ captures the current process environment as a map. It is meant to
// be called once, at startup.
func Environ() map[string]string {
	return env.ToMap(os.Environ())
}

// Resolve validates the model environment held in environ. Only environ is
// consulted; the process environment is never read.
//
// Failures are reported in this order: missing MODEL_PATH, missing model file,
// unparsable integer, non-positive integer.
func Resolve(environ map[string]string) (Resolved, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	var raw modelEnv
	parseErr := env.ParseWithOptions(&raw, env.Options{Environment: environ})
	for _, e := range envErrors(parseErr) {
		switch e.(type) {
		case env.EnvVarIsNotSetError, *env.EnvVarIsNotSetError, env.EmptyEnvVarError, *env.EmptyEnvVarError:
			return Resolved{}, &Error{Kind: KindConfigMissing, Key: EnvModelPath}
		default:
			return Resolved{}, fmt.Errorf("error getting env configs: %w", e)
		}
	}
	if raw.ModelPath == "" {
		return Resolved{}, &Error{Kind: KindConfigMissing, Key: EnvModelPath}
	}
	if !fsutil.IsRegularFile(raw.ModelPath) {
		return Resolved{}, &Error{Kind: KindFileNotFound, Key: EnvModelPath, Value: raw.ModelPath, Err: os.ErrNotExist}
	}
	ctx, ctxErr := parseCount(EnvContextSize, raw.ContextSize, DefaultContextSize)
	threads, threadsErr := parseCount(EnvThreadCount, raw.ThreadCount, DefaultThreadCount)
	// Parse errors on either variable win over range errors.
	for _, kind := range []Kind{KindParse, KindRange} {
		for _, err := range []*Error{ctxErr, threadsErr} {
			if err != nil && err.Kind == kind {
				return Resolved{}, err
			}
		}
	}
	return Resolved{
		ModelPath:   raw.ModelPath,
		ContextSize: ctx,
		ThreadCount: threads,
	}, nil
}

// parseCount reads a positive integer, ignoring surrounding whitespace. An
// empty value yields def. Integers too large for int are range errors.
func parseCount(key, v string, def int) (int, *Error) {
	s := strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, strconv.IntSize)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, &Error{Kind: KindRange, Key: key, Value: s}
	case err != nil:
		return 0, &Error{Kind: KindParse, Key: key, Value: v}
	case n <= 0:
		return 0, &Error{Kind: KindRange, Key: key, Value: strconv.FormatInt(n, 10)}
	}
	return int(n), nil
}

// envErrors flattens the aggregate error returned by env.Parse.
func envErrors(err error) []error {
	if err == nil {
		return nil
	}
	var agg env.AggregateError
	if errors.As(err, &agg) {
		return agg.Errors
	}
	return []error{err}
}
