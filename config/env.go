package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from the given file(s) (or ".env"
// if none are given) into the process environment, returning nil if no
// such file exists. Grounded on ezex-io-gopkg/env.LoadEnvsFromFile.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

// FromEnv resolves an Options the same way New does, then overlays
// FLOW_MESSAGE_BUFFER_SIZE, FLOW_MAX_RESOURCES, and FLOW_STRIDE_LENGTH from
// the environment whenever they are set, grounded on
// ezex-io-gopkg/env.GetEnv's parse-or-panic behavior — except here a
// malformed value returns an error instead of panicking, since a library
// must not crash its host process over operator configuration.
func FromEnv(opts ...Option) (Options, error) {
	o := New(opts...)

	if err := overlayInt(&o.MessageBufferSize, "FLOW_MESSAGE_BUFFER_SIZE"); err != nil {
		return Options{}, err
	}

	if err := overlayInt(&o.MaxResources, "FLOW_MAX_RESOURCES"); err != nil {
		return Options{}, err
	}

	if err := overlayInt(&o.StrideLength, "FLOW_STRIDE_LENGTH"); err != nil {
		return Options{}, err
	}

	return o, nil
}

func overlayInt(dst *int, key string) error {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("config: %s=%q: %w", key, val, err)
	}

	*dst = n

	return nil
}
