// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for slushie.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Assistant.Model)
//
// # File Format
//
//	[assistant]
//	ollama_url = "http://127.0.0.1:11434"
//	model = "llama3.2"
//	context = "Pricing Strategy"
//	tone = "Simple & Practical"
//
//	[payments]
//	sync_interval_minutes = 5
//	auto_sync = false
//
//	[events]
//	enabled = true
//	brokers = ["localhost:9092"]
//
//	[logging]
//	level = "info"
package config
