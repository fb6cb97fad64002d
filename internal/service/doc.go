// Package service provides the provider registry the plugin host executes
// calls through.
//
// The registry maintains a catalog of service providers and handles
// discovery, tool execution, and relevance scoring.
//
// Components:
//   - Registry: Central service catalog
//   - Provider: Interface for service implementations
//   - Service discovery with relevance scoring
//
// Features:
//   - Thread-safe service registration
//   - Category-based filtering
//   - Intent-based discovery with scoring
//   - Tool execution with context passing
//   - Service statistics and health
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(filesystemProvider)
//	result, err := registry.Execute(ctx, "fs.read_text_file", params, callCtx)
package service
