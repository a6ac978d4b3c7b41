// Package repository provides a generic Bun repository with CRUD, paging,
// upserts and transaction binding.
package repository
