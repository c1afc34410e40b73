// Package postgres implements store.CardStore on PostgreSQL through the
// pgx database/sql driver. Queries use $n placeholders and every statement
// is scoped to the owning user.
package postgres
