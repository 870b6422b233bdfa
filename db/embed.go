// Package db embeds the storefront schema and seed catalog.
package db

import _ "embed"

// Schema holds the idempotent DDL for products, orders and order lines.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts is the default catalog as a JSON array.
//
//go:embed seed/products.json
var SeedProducts []byte
