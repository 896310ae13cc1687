// Package domain contains the core value types shared across the pipeline:
// dialogue nodes and their transitions, hypothetical user state, resolved
// traversal paths, context turns, and the archive record that ties one
// generation attempt together.
//
// Types here are plain data. Behavior lives in the packages that consume
// them (resolver, window, generate, archive).
package domain
