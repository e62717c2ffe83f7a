// Package logx configures schedkit's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog so that
// library consumers can plug in a console logger during development and a
// no-op logger in production paths that must stay silent. The zero value
// is a safe no-op logger, so components may hold a Logger field without
// nil checks.
package logx
