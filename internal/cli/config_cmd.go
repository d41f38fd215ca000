// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/slushie-cfo/internal/config"
)

// HandleConfig manages the config file.
//
// Subcommands:
//
//	show          Effective config, env overrides included (default)
//	path          Config file location
//	keys          Every settable key
//	get KEY       One effective value
//	set KEY VAL   Write one value to the file
//	init          Write a default config file if none exists
func HandleConfig(args Args) error {
	path, err := configFile(args)
	if err != nil {
		return err
	}
	return runConfig(args, path, os.Stdout)
}

func runConfig(args Args, path string, out io.Writer) error {
	sub := "show"
	if len(args.Rest) > 0 {
		sub = args.Rest[0]
	}
	rest := args.Rest[min(1, len(args.Rest)):]

	switch sub {
	case "show":
		cfg, err := loadEffective(path)
		if err != nil {
			return err
		}
		if args.JSON {
			fmt.Fprintln(out, cfg.String())
			return nil
		}
		return toml.NewEncoder(out).Encode(cfg)

	case "path":
		fmt.Fprintln(out, path)
		return nil

	case "keys":
		for _, key := range config.AllKeys() {
			fmt.Fprintln(out, key)
		}
		return nil

	case "get":
		if len(rest) != 1 {
			return &UsageError{Message: "usage: slushie config get KEY"}
		}
		cfg, err := loadEffective(path)
		if err != nil {
			return err
		}
		v, err := cfg.Get(rest[0])
		if err != nil {
			return &UsageError{Message: err.Error()}
		}
		fmt.Fprintln(out, v)
		return nil

	case "set":
		if len(rest) != 2 {
			return &UsageError{Message: "usage: slushie config set KEY VALUE"}
		}
		cfg, err := loadFileOnly(path)
		if err != nil {
			return err
		}
		if err := cfg.Set(rest[0], rest[1]); err != nil {
			return &UsageError{Message: err.Error()}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.SaveTOML(cfg, path); err != nil {
			return err
		}
		if !args.Quiet {
			fmt.Fprintf(out, "%s %s = %s\n", SuccessStyle.Render("Set"), rest[0], rest[1])
		}
		return nil

	case "init":
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return err
		}
		if !args.Quiet {
			fmt.Fprintf(out, "%s %s\n", SuccessStyle.Render("Wrote"), path)
		}
		return nil
	}

	return &UsageError{Message: fmt.Sprintf("unknown config subcommand %q", sub)}
}

// loadEffective loads path with env overrides, or the defaults when the
// file does not exist.
func loadEffective(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := config.Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return config.LoadFromPath(path)
}

// loadFileOnly loads path without env overrides so set does not persist
// values that came from the environment.
func loadFileOnly(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err := config.LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
