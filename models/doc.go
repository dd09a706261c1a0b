// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package models defines request, response, and domain types shared by
// handlers and the router.
package models
