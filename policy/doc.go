// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package policy holds the authorization predicates: who may edit an
// initiative, who may change an item's status. The admin allow-list is
// injected at construction so deployments and tests configure it
// independently. Decisions: initiative edits are creator-or-admin; item
// status changes accept either the initiative creator or the item creator
// (the permissive variant), or an admin.
package policy
