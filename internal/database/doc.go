// Package database provides PostgreSQL connection pool management.
//
// Archives A and B and the results store may live in the same database;
// Pools hands out one pool per distinct connection string so they share it.
package database
